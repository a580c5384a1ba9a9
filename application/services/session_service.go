package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/events"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// SessionService keeps users signed on and runs the friend and status
// operations with each user's stored token.
type SessionService struct {
	sessions  *SessionStore
	auth      ports.AuthClient
	data      ports.DataClient
	push      ports.PushClient
	events    ports.EventPublisher
	dataTable string
	clock     clockwork.Clock
	logger    *zap.Logger
}

// NewSessionService creates the session service
func NewSessionService(
	sessions *SessionStore,
	auth ports.AuthClient,
	data ports.DataClient,
	push ports.PushClient,
	publisher ports.EventPublisher,
	dataTable string,
	clock clockwork.Clock,
	logger *zap.Logger,
) *SessionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionService{
		sessions:  sessions,
		auth:      auth,
		data:      data,
		push:      push,
		events:    publisher,
		dataTable: dataTable,
		clock:     clock,
		logger:    logger,
	}
}

// SignOn obtains a read+update token for userID and records the session.
// Errors from the authorization service keep their status.
func (s *SessionService) SignOn(ctx context.Context, userID, password string) (*Session, error) {
	ticket := s.sessions.Begin(userID)

	issued, err := s.auth.GetUpdateToken(ctx, userID, password)
	if err != nil {
		s.logger.Debug("Sign-on refused", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	sess := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Token:      issued.Token,
		Partition:  issued.Partition,
		Row:        issued.Row,
		SignedOnAt: s.clock.Now(),
		ExpiresAt:  issued.ExpiresAt,
	}
	if err := s.sessions.Commit(ticket, sess); err != nil {
		return nil, pkgerrors.NewConflictError("signed off while signing on").WithCause(err)
	}

	s.logger.Info("User signed on",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
	)
	s.publish(ctx, events.NewSignedOn(userID, sess.ID, sess.Partition, sess.Row, sess.SignedOnAt))
	return sess, nil
}

// SignOff ends userID's session
func (s *SessionService) SignOff(ctx context.Context, userID string) error {
	sess, ok := s.sessions.End(userID)
	if !ok {
		return pkgerrors.NewNotFoundError("session")
	}

	s.logger.Info("User signed off",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
	)
	s.publish(ctx, events.NewSignedOff(userID, sess.ID, s.clock.Now()))
	return nil
}

// AddFriend adds a friend to userID's list. Adding a present friend
// succeeds without writing.
func (s *SessionService) AddFriend(ctx context.Context, userID, country, name string) error {
	changed, err := s.changeFriends(ctx, userID, country, name, entities.FriendList.Add)
	if err != nil || !changed {
		return err
	}
	s.publish(ctx, events.NewFriendAdded(userID, country, name, s.clock.Now()))
	return nil
}

// RemoveFriend removes a friend from userID's list. Removing an absent
// friend succeeds without writing.
func (s *SessionService) RemoveFriend(ctx context.Context, userID, country, name string) error {
	changed, err := s.changeFriends(ctx, userID, country, name, entities.FriendList.Remove)
	if err != nil || !changed {
		return err
	}
	s.publish(ctx, events.NewFriendRemoved(userID, country, name, s.clock.Now()))
	return nil
}

// changeFriends reads the list, applies change and writes it back when it
// changed. Two concurrent changes for the same user can overwrite each other.
func (s *SessionService) changeFriends(
	ctx context.Context,
	userID, country, name string,
	change func(entities.FriendList, entities.Friend) (entities.FriendList, bool),
) (bool, error) {
	sess, err := s.session(userID)
	if err != nil {
		return false, err
	}
	friend, err := entities.NewFriend(country, name)
	if err != nil {
		return false, pkgerrors.NewValidationError(err.Error())
	}

	list, err := s.readFriends(ctx, sess)
	if err != nil {
		return false, err
	}

	updated, changed := change(list, friend)
	if !changed {
		return false, nil
	}

	err = s.data.UpdateEntityAuth(ctx, sess.Token, s.dataTable, sess.Partition, sess.Row,
		map[string]string{entities.FriendsProperty: updated.String()})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReadFriendList returns userID's encoded friend list
func (s *SessionService) ReadFriendList(ctx context.Context, userID string) (string, error) {
	sess, err := s.session(userID)
	if err != nil {
		return "", err
	}
	props, err := s.data.ReadEntityAuth(ctx, sess.Token, s.dataTable, sess.Partition, sess.Row)
	if err != nil {
		return "", err
	}
	return props[entities.FriendsProperty], nil
}

// UpdateStatus writes userID's status and asks the push service to
// deliver it to every friend. A failed push is logged and does not fail
// the update.
func (s *SessionService) UpdateStatus(ctx context.Context, userID, status string) error {
	sess, err := s.session(userID)
	if err != nil {
		return err
	}
	if status == "" {
		return pkgerrors.NewValidationError("status cannot be empty")
	}

	err = s.data.UpdateEntityAuth(ctx, sess.Token, s.dataTable, sess.Partition, sess.Row,
		map[string]string{entities.StatusProperty: status})
	if err != nil {
		return err
	}

	props, err := s.data.ReadEntityAuth(ctx, sess.Token, s.dataTable, sess.Partition, sess.Row)
	if err != nil {
		return err
	}
	friends := props[entities.FriendsProperty]
	list, err := entities.ParseFriendList(friends)
	if err != nil {
		s.logger.Warn("Stored friend list is malformed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	pushed := false
	if len(list) > 0 {
		if err := s.push.PushStatus(ctx, sess.Partition, sess.Row, status, friends); err != nil {
			s.logger.Warn("Status push failed",
				zap.String("user_id", userID),
				zap.Int("recipients", len(list)),
				zap.Error(err),
			)
		} else {
			pushed = true
		}
	}

	s.publish(ctx, events.NewStatusUpdated(userID, status, len(list), pushed, s.clock.Now()))
	return nil
}

// session returns the caller's live session or a forbidden error
func (s *SessionService) session(userID string) (*Session, error) {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return nil, pkgerrors.NewForbiddenError("user is not signed on")
	}
	return sess, nil
}

func (s *SessionService) readFriends(ctx context.Context, sess *Session) (entities.FriendList, error) {
	props, err := s.data.ReadEntityAuth(ctx, sess.Token, s.dataTable, sess.Partition, sess.Row)
	if err != nil {
		return nil, err
	}
	list, err := entities.ParseFriendList(props[entities.FriendsProperty])
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored friend list is malformed").WithCause(err)
	}
	return list, nil
}

func (s *SessionService) publish(ctx context.Context, event events.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
