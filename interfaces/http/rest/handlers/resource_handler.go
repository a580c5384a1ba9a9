package handlers

import (
	"context"
	"net/http"

	"github.com/jameslaisianto/Back-end-web-dev/application/services"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/filter"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/utils"
)

// allRows as the last segment of ReadEntityAdmin selects a whole partition
const allRows = "*"

// tableRequest names a table to create. The limits are DynamoDB's.
type tableRequest struct {
	Table string `validate:"required,min=3,max=255,tablename"`
}

// entityKeyRequest addresses an entity to write. Key lengths are bounded by
// DynamoDB's key size limits.
type entityKeyRequest struct {
	Table     string `validate:"required"`
	Partition string `validate:"required,max=2048"`
	Row       string `validate:"required,max=1024"`
}

// ResourceHandler serves the resource service: token-authenticated entity
// access plus the generic table administration paths.
type ResourceHandler struct {
	resources *services.ResourceService
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// ReadEntityAuth handles GET /ReadEntityAuth/{table}/{token}/{partition}/{row}
func (h *ResourceHandler) ReadEntityAuth(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 4)
	if err != nil {
		return Result{}, err
	}

	props, err := h.resources.AuthenticatedRead(r.Context(), segs[1], segs[0], segs[2], segs[3])
	if err != nil {
		return Result{}, err
	}
	return OK(props), nil
}

// UpdateEntityAuth handles PUT /UpdateEntityAuth/{table}/{token}/{partition}/{row}
func (h *ResourceHandler) UpdateEntityAuth(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 4)
	if err != nil {
		return Result{}, err
	}
	props, err := common.DecodeJSONObject(r)
	if err != nil {
		return Result{}, err
	}

	if err := h.resources.AuthenticatedUpdate(r.Context(), segs[1], segs[0], segs[2], segs[3], props); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// CreateTable handles POST /CreateTableAdmin/{table}
func (h *ResourceHandler) CreateTable(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}

	req := tableRequest{Table: segs[0]}
	if err := utils.ValidateRequest(req); err != nil {
		return Result{}, err
	}

	created, err := h.resources.CreateTable(r.Context(), req.Table)
	if err != nil {
		return Result{}, err
	}
	if created {
		return Result{Status: http.StatusCreated}, nil
	}
	return Result{Status: http.StatusAccepted}, nil
}

// DeleteTable handles DELETE /DeleteTableAdmin/{table}
func (h *ResourceHandler) DeleteTable(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}
	if err := h.resources.DeleteTable(r.Context(), segs[0]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// ReadEntity handles GET /ReadEntityAdmin/{table}[/{partition}/{row}|*].
// The table-only form takes an optional body of property predicates.
func (h *ResourceHandler) ReadEntity(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 1, 3)
	if err != nil {
		return Result{}, err
	}
	ctx := r.Context()
	table := segs[0]

	if len(segs) == 1 {
		body, err := common.DecodeJSONObject(r)
		if err != nil {
			return Result{}, err
		}
		preds, err := filter.ParsePredicates(body)
		if err != nil {
			return Result{}, pkgerrors.NewValidationError(err.Error())
		}
		return h.list(r, table, preds)
	}

	partition, row := segs[1], segs[2]
	if row == allRows {
		return h.list(r, table, []filter.Predicate{filter.PartitionEquals(partition)})
	}

	e, err := h.resources.ReadEntity(ctx, table, partition, row)
	if err != nil {
		return Result{}, err
	}
	return OK(e.AdminView()), nil
}

func (h *ResourceHandler) list(r *http.Request, table string, preds []filter.Predicate) (Result, error) {
	list, err := h.resources.ReadEntities(r.Context(), table, preds)
	if err != nil {
		return Result{}, err
	}
	return OK(adminViews(list)), nil
}

// UpdateEntity handles PUT /UpdateEntityAdmin/{table}/{partition}/{row}
func (h *ResourceHandler) UpdateEntity(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 3)
	if err != nil {
		return Result{}, err
	}
	req := entityKeyRequest{Table: segs[0], Partition: segs[1], Row: segs[2]}
	if err := utils.ValidateRequest(req); err != nil {
		return Result{}, err
	}
	props, err := common.DecodeJSONObject(r)
	if err != nil {
		return Result{}, err
	}

	if err := h.resources.UpdateEntity(r.Context(), req.Table, req.Partition, req.Row, props); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// DeleteEntity handles DELETE /DeleteEntityAdmin/{table}/{partition}/{row}
func (h *ResourceHandler) DeleteEntity(r *http.Request) (Result, error) {
	segs, err := pathSegments(r, 3)
	if err != nil {
		return Result{}, err
	}
	if err := h.resources.DeleteEntity(r.Context(), segs[0], segs[1], segs[2]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK}, nil
}

// AddProperty handles PUT /AddPropertyAdmin/{table}
func (h *ResourceHandler) AddProperty(r *http.Request) (Result, error) {
	return h.setOnAll(r, h.resources.AddProperty)
}

// UpdateProperty handles PUT /UpdatePropertyAdmin/{table}
func (h *ResourceHandler) UpdateProperty(r *http.Request) (Result, error) {
	return h.setOnAll(r, h.resources.UpdateProperty)
}

func (h *ResourceHandler) setOnAll(
	r *http.Request,
	apply func(ctx context.Context, name string, props map[string]interface{}) (int, error),
) (Result, error) {
	segs, err := pathSegments(r, 1)
	if err != nil {
		return Result{}, err
	}
	props, err := common.DecodeJSONObject(r)
	if err != nil {
		return Result{}, err
	}

	n, err := apply(r.Context(), segs[0], props)
	if err != nil {
		return Result{}, err
	}
	return OK(map[string]int{"updated": n}), nil
}

func adminViews(list []*entities.Entity) []map[string]interface{} {
	out := make([]map[string]interface{}, len(list))
	for i, e := range list {
		out[i] = e.AdminView()
	}
	return out
}
