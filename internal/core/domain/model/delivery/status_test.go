package delivery_test

import (
	"fmt"
	"testing"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	assert.Equal(t, 0, int(delivery.Unknown))
	assert.Equal(t, 1, int(delivery.Pending))
	assert.Equal(t, 2, int(delivery.Delivered))
	assert.Equal(t, 3, int(delivery.Cancelled))
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range []delivery.Status{delivery.Pending, delivery.Delivered, delivery.Cancelled} {
		t.Run(status.String(), func(t *testing.T) {
			require.NoError(t, status.Validate())
		})
	}

	for _, status := range []delivery.Status{delivery.Unknown, delivery.Status(-1), delivery.Status(4)} {
		t.Run(fmt.Sprintf("reject %d", int(status)), func(t *testing.T) {
			err := status.Validate()
			require.Error(t, err)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
			assert.Contains(t, err.Error(), fmt.Sprintf("%d is not a valid status", int(status)))
		})
	}
}

func TestStatus_StringAndParse(t *testing.T) {
	testCases := []struct {
		status delivery.Status
		name   string
	}{
		{delivery.Pending, "Pending"},
		{delivery.Delivered, "Delivered"},
		{delivery.Cancelled, "Cancelled"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.status.String())

			parsed, err := delivery.ParseStatus(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.status, parsed)

			parsed, err = delivery.ParseStatus(" " + tc.name + " ")
			require.NoError(t, err)
			assert.Equal(t, tc.status, parsed)
		})
	}

	assert.Equal(t, "Unknown", delivery.Status(42).String())

	parsed, err := delivery.ParseStatus("DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, delivery.Delivered, parsed)

	_, err = delivery.ParseStatus("Unknown")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_Transitions(t *testing.T) {
	testCases := []struct {
		name     string
		from     delivery.Status
		apply    func(delivery.Status) (delivery.Status, error)
		expected delivery.Status
		errIs    error
	}{
		{"assign pending", delivery.Pending, func(s delivery.Status) (delivery.Status, error) { return s.Assign("d") }, delivery.Pending, nil},
		{"assign delivered", delivery.Delivered, func(s delivery.Status) (delivery.Status, error) { return s.Assign("d") }, delivery.Unknown, errs.ErrInvalidTransition},
		{"assign cancelled reopens", delivery.Cancelled, func(s delivery.Status) (delivery.Status, error) { return s.Assign("d") }, delivery.Pending, nil},
		{"complete pending", delivery.Pending, func(s delivery.Status) (delivery.Status, error) { return s.Complete("d") }, delivery.Delivered, nil},
		{"complete delivered", delivery.Delivered, func(s delivery.Status) (delivery.Status, error) { return s.Complete("d") }, delivery.Unknown, errs.ErrAlreadyTerminal},
		{"complete cancelled", delivery.Cancelled, func(s delivery.Status) (delivery.Status, error) { return s.Complete("d") }, delivery.Unknown, errs.ErrAlreadyTerminal},
		{"complete unknown", delivery.Unknown, func(s delivery.Status) (delivery.Status, error) { return s.Complete("d") }, delivery.Unknown, errs.ErrInvalidTransition},
		{"revert delivered", delivery.Delivered, func(s delivery.Status) (delivery.Status, error) { return s.RevertProof("d") }, delivery.Pending, nil},
		{"revert pending", delivery.Pending, func(s delivery.Status) (delivery.Status, error) { return s.RevertProof("d") }, delivery.Unknown, errs.ErrInvalidTransition},
		{"cancel pending", delivery.Pending, func(s delivery.Status) (delivery.Status, error) { return s.Cancel("d") }, delivery.Cancelled, nil},
		{"cancel cancelled", delivery.Cancelled, func(s delivery.Status) (delivery.Status, error) { return s.Cancel("d") }, delivery.Cancelled, nil},
		{"cancel delivered", delivery.Delivered, func(s delivery.Status) (delivery.Status, error) { return s.Cancel("d") }, delivery.Unknown, errs.ErrAlreadyTerminal},
		{"cancel unknown", delivery.Unknown, func(s delivery.Status) (delivery.Status, error) { return s.Cancel("d") }, delivery.Unknown, errs.ErrInvalidTransition},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.apply(tc.from)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, delivery.Pending.IsTerminal())
	assert.True(t, delivery.Delivered.IsTerminal())
	assert.True(t, delivery.Cancelled.IsTerminal())
}
