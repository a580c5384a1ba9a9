package services

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// PushResult counts the outcome of one fan-out
type PushResult struct {
	Recipients int `json:"recipients"`
	Delivered  int `json:"delivered"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// PushService appends a status line to the Updates property of every
// friend's profile.
type PushService struct {
	tables      ports.TableCache
	dataTable   string
	concurrency int
	logger      *zap.Logger
	metrics     *observability.Collector
}

// NewPushService creates the push service. concurrency bounds the number
// of recipients written at once.
func NewPushService(tables ports.TableCache, dataTable string, concurrency int, logger *zap.Logger, metrics *observability.Collector) *PushService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PushService{
		tables:      tables,
		dataTable:   dataTable,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// PushStatus delivers status from (country, name) to every friend in the
// encoded list. A recipient that cannot be written is logged and counted;
// it never stops delivery to the others. Only a malformed list is an error.
func (s *PushService) PushStatus(ctx context.Context, country, name, status, friends string) (*PushResult, error) {
	list, err := entities.ParseFriendList(friends)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if status == "" {
		return nil, pkgerrors.NewValidationError("status cannot be empty")
	}

	result := &PushResult{Recipients: len(list)}
	if len(list) == 0 {
		return result, nil
	}

	logger := s.logger.With(
		zap.String("sender_country", country),
		zap.String("sender_name", name),
	)

	table, err := s.tables.Lookup(ctx, s.dataTable)
	if err != nil {
		logger.Error("Cannot open data table for push", zap.Error(err))
		result.Failed = len(list)
		for range list {
			s.metrics.PushDelivery("failed")
		}
		return result, nil
	}

	// Deliveries finish even if the sender goes away.
	deliverCtx := context.WithoutCancel(ctx)

	var delivered, skipped, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, friend := range list {
		friend := friend
		g.Go(func() error {
			switch err := s.deliver(deliverCtx, table, friend, status); {
			case err == nil:
				delivered.Add(1)
				s.metrics.PushDelivery("delivered")
			case errors.Is(err, ports.ErrEntityNotFound):
				skipped.Add(1)
				s.metrics.PushDelivery("skipped")
				logger.Debug("Push recipient has no profile",
					zap.String("country", friend.Country),
					zap.String("name", friend.Name),
				)
			default:
				failed.Add(1)
				s.metrics.PushDelivery("failed")
				logger.Warn("Push to recipient failed",
					zap.String("country", friend.Country),
					zap.String("name", friend.Name),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Delivered = int(delivered.Load())
	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())

	logger.Info("Status pushed",
		zap.Int("recipients", result.Recipients),
		zap.Int("delivered", result.Delivered),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// deliver appends one status line to a friend's Updates. Concurrent pushes
// to the same friend can lose a line.
func (s *PushService) deliver(ctx context.Context, table ports.Table, friend entities.Friend, status string) error {
	e, err := table.Retrieve(ctx, friend.Country, friend.Name)
	if err != nil {
		return err
	}

	update := entities.NewEntity(friend.Country, friend.Name)
	update.Properties[entities.UpdatesProperty] = e.StringProperty(entities.UpdatesProperty) + status + "\n"
	return table.InsertOrMerge(ctx, update)
}
