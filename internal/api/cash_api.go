package api

import (
	"context"

	"restopos/internal/bridge"
	"restopos/internal/dto"
	"restopos/internal/model"
)

// CashAPI covers the cash-workflow surface of the backend. The backend is the
// sole authority over shift state; these calls never mutate local state.
type CashAPI interface {
	OpenShift(ctx context.Context, req dto.OpenShiftRequest) (*model.CashShift, error)
	// GetActiveShift returns (nil, nil) when no shift is open.
	GetActiveShift(ctx context.Context, req dto.GetActiveShiftRequest) (*model.CashShift, error)
	RegisterMovement(ctx context.Context, req dto.RegisterMovementRequest) error
	CloseShift(ctx context.Context, req dto.CloseShiftRequest) (*model.CashShift, error)
	ListShifts(ctx context.Context, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error)
	// ListShiftsEnriched is ListShifts with order details attached to each
	// ORDER-sourced movement.
	ListShiftsEnriched(ctx context.Context, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error)
}

type cashAPI struct{ b bridge.Caller }

func NewCashAPI(b bridge.Caller) CashAPI { return &cashAPI{b: b} }

func (a *cashAPI) OpenShift(ctx context.Context, req dto.OpenShiftRequest) (*model.CashShift, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var shift model.CashShift
	if err := a.b.Call(ctx, "cash_open_shift", req, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (a *cashAPI) GetActiveShift(ctx context.Context, req dto.GetActiveShiftRequest) (*model.CashShift, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	// The backend answers null when nothing is open — a nil pointer here.
	var shift *model.CashShift
	if err := a.b.Call(ctx, "cash_get_active_shift", req, &shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (a *cashAPI) RegisterMovement(ctx context.Context, req dto.RegisterMovementRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	return a.b.Call(ctx, "cash_register_movement", req, nil)
}

func (a *cashAPI) CloseShift(ctx context.Context, req dto.CloseShiftRequest) (*model.CashShift, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Denominations == nil {
		req.Denominations = []model.Denomination{}
	}
	var shift model.CashShift
	if err := a.b.Call(ctx, "cash_close_shift", req, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (a *cashAPI) ListShifts(ctx context.Context, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error) {
	return a.listShifts(ctx, "cash_list_shifts", req)
}

func (a *cashAPI) ListShiftsEnriched(ctx context.Context, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error) {
	return a.listShifts(ctx, "cash_list_shifts_enriched", req)
}

func (a *cashAPI) listShifts(ctx context.Context, name string, req dto.ListShiftsRequest) (*dto.Page[model.CashShift], error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var page dto.Page[model.CashShift]
	if err := a.b.Call(ctx, name, req, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []model.CashShift{}
	}
	return &page, nil
}
