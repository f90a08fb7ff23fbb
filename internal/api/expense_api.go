package api

import (
	"context"

	"restopos/internal/bridge"
	"restopos/internal/dto"
	"restopos/internal/model"
)

type ExpenseAPI interface {
	List(ctx context.Context, req dto.ExpensesListRequest) (*dto.Page[model.Expense], error)
	Create(ctx context.Context, req dto.ExpenseCreateRequest) (*model.Expense, error)
	Delete(ctx context.Context, req dto.ExpenseDeleteRequest) error
}

type expenseAPI struct{ b bridge.Caller }

func NewExpenseAPI(b bridge.Caller) ExpenseAPI { return &expenseAPI{b: b} }

func (a *expenseAPI) List(ctx context.Context, req dto.ExpensesListRequest) (*dto.Page[model.Expense], error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var page dto.Page[model.Expense]
	if err := a.b.Call(ctx, "expenses_list", req, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []model.Expense{}
	}
	return &page, nil
}

func (a *expenseAPI) Create(ctx context.Context, req dto.ExpenseCreateRequest) (*model.Expense, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var created model.Expense
	if err := a.b.Call(ctx, "expense_create", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *expenseAPI) Delete(ctx context.Context, req dto.ExpenseDeleteRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	return a.b.Call(ctx, "expense_delete", req, nil)
}
