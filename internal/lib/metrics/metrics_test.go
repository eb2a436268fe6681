package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: models.ErrFull, want: "full"},
		{err: fmt.Errorf("services.reservation.Create: %w", models.ErrAlreadySignedUp), want: "already_signed_up"},
		{err: &models.NotYetOpenError{}, want: "not_yet_open"},
		{err: fmt.Errorf("wrap: %w", models.ErrStoreConflict), want: "conflict"},
		{err: errors.New("db down"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

func TestSignupsRejectedCounter(t *testing.T) {
	before := testutil.ToFloat64(SignupsRejected.WithLabelValues("full"))
	SignupsRejected.WithLabelValues(Reason(models.ErrFull)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SignupsRejected.WithLabelValues("full")))
}
