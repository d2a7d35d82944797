package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"gin-gorm-market/internal/domain"
)

func TestObserveOutcome(t *testing.T) {
	before := testutil.ToFloat64(Engagement.WithLabelValues("add_reaction", "conflict"))
	Observe(Engagement, "add_reaction", domain.Conflict("dup"))
	assert.Equal(t, before+1, testutil.ToFloat64(Engagement.WithLabelValues("add_reaction", "conflict")))

	before = testutil.ToFloat64(Engagement.WithLabelValues("add_reaction", "ok"))
	Observe(Engagement, "add_reaction", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(Engagement.WithLabelValues("add_reaction", "ok")))
}
