package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewComplaints, "complaints"},
		{ViewDetail, "detail"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_ComplaintsIsZero(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewComplaints, v)
}

func TestComplaintsLoaded_CarriesFilter(t *testing.T) {
	status := domain.StatusPending
	msg := ComplaintsLoaded{
		Complaints: []domain.Complaint{{ID: "a"}, {ID: "b"}},
		Filter:     domain.FilterSpec{Status: &status},
	}

	assert.Len(t, msg.Complaints, 2)
	assert.Equal(t, "status=Pending", msg.Filter.Describe())
	assert.NoError(t, msg.Err)
}

func TestStatusUpdated_WithError(t *testing.T) {
	msg := StatusUpdated{Err: errors.New("not found")}

	assert.Nil(t, msg.Complaint)
	assert.EqualError(t, msg.Err, "not found")
}
