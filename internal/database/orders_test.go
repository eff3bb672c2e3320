package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/models"
)

func TestPatchAssignments(t *testing.T) {
	name := "A"
	amount := int64(100000)
	status := models.StatusPaid
	sets, args, err := patchAssignments(models.OrderPatch{
		CustomerName: &name,
		Amount:       &amount,
		Status:       &status,
		Items:        []models.OrderItem{{ProductID: "P1", Quantity: 2, Price: 500}},
		Metadata:     map[string]string{"k": "v"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"customer_name = ?", "amount = ?", "items = ?", "metadata = metadata + ?"}, sets)
	require.Len(t, args, 4)
	assert.Equal(t, "A", args[0])
	assert.Equal(t, int64(100000), args[1])
	assert.JSONEq(t, `[{"productId":"P1","name":"","qty":2,"price":500}]`, args[2].(string))
	assert.Equal(t, map[string]string{"k": "v"}, args[3])
}

func TestPatchAssignmentsEmptyItemsStillReplace(t *testing.T) {
	sets, args, err := patchAssignments(models.OrderPatch{Items: []models.OrderItem{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"items = ?"}, sets)
	assert.Equal(t, "[]", args[0])
}

func TestOrderRow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	row, err := orderRow(&models.Order{
		ID:        "order_A",
		Status:    models.StatusCreated,
		Currency:  "INR",
		OrderDate: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	require.Len(t, row, 16)
	assert.Equal(t, "order_A", row[0])
	assert.Equal(t, "created", row[4])
	assert.Equal(t, "", row[10], "adresse vide")
	assert.Equal(t, "", row[11], "items absents")
	assert.Equal(t, "", row[12], "paiement absent")
}
