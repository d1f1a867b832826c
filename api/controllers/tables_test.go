package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

type stubTables struct {
	tables.Service
	listFn   func(ctx context.Context) ([]tables.TableView, error)
	createFn func(ctx context.Context, input tables.CreateInput) (*tables.TableView, error)
	updateFn func(ctx context.Context, input tables.UpdateInput) (*tables.TableView, error)
	openFn   func(ctx context.Context, number types.TableNumber) (*tables.TableView, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s stubTables) List(ctx context.Context) ([]tables.TableView, error) { return s.listFn(ctx) }

func (s stubTables) Create(ctx context.Context, input tables.CreateInput) (*tables.TableView, error) {
	return s.createFn(ctx, input)
}

func (s stubTables) Update(ctx context.Context, input tables.UpdateInput) (*tables.TableView, error) {
	return s.updateFn(ctx, input)
}

func (s stubTables) Open(ctx context.Context, number types.TableNumber) (*tables.TableView, error) {
	return s.openFn(ctx, number)
}

func (s stubTables) Delete(ctx context.Context, id uuid.UUID) error { return s.deleteFn(ctx, id) }

func TestTablesList(t *testing.T) {
	svc := stubTables{listFn: func(context.Context) ([]tables.TableView, error) {
		return []tables.TableView{{Number: "1", ActiveOrders: 2, Status: enums.TableStatusOccupied}}, nil
	}}
	rec := serve(TablesList(svc, testLogger()), jsonRequest(t, http.MethodGet, "/tables", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeEnvelope(t, rec)["tables"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0].(map[string]any)["activeOrders"])
}

func TestTableCreateConflict(t *testing.T) {
	svc := stubTables{createFn: func(_ context.Context, input tables.CreateInput) (*tables.TableView, error) {
		assert.Equal(t, types.TableNumber("3"), input.Number)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Bu masa numarası zaten kullanılıyor")
	}}
	rec := serve(TableCreate(svc, testLogger()), jsonRequest(t, http.MethodPost, "/tables", map[string]any{"number": 3, "capacity": 4}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), decodeEnvelope(t, rec)["code"])
}

func TestTableUpdatePatchAndOpen(t *testing.T) {
	id := uuid.New()
	svc := stubTables{
		updateFn: func(_ context.Context, input tables.UpdateInput) (*tables.TableView, error) {
			assert.Equal(t, id, input.ID)
			require.NotNil(t, input.IsActive)
			assert.False(t, *input.IsActive)
			assert.Nil(t, input.Capacity)
			return &tables.TableView{ID: id}, nil
		},
		openFn: func(_ context.Context, number types.TableNumber) (*tables.TableView, error) {
			assert.Equal(t, types.TableNumber("B2"), number)
			return &tables.TableView{Number: "B2", Status: enums.TableStatusEmpty}, nil
		},
	}
	handler := TableUpdate(svc, testLogger())

	rec := serve(handler, jsonRequest(t, http.MethodPut, "/tables", map[string]any{"id": id, "isActive": false}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(handler, jsonRequest(t, http.MethodPut, "/tables", map[string]any{"action": "open", "tableNumber": "b2"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "B2", decodeEnvelope(t, rec)["table"].(map[string]any)["number"])

	rec = serve(handler, jsonRequest(t, http.MethodPut, "/tables", `{"action":"open"`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableDeleteWhileOccupied(t *testing.T) {
	svc := stubTables{deleteFn: func(context.Context, uuid.UUID) error {
		return pkgerrors.New(pkgerrors.CodeConflict, "Dolu masa silinemez")
	}}
	rec := serve(TableDelete(svc, testLogger()), jsonRequest(t, http.MethodDelete, "/tables?id="+uuid.NewString(), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Dolu masa silinemez", decodeEnvelope(t, rec)["error"])
}
