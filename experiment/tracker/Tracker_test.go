package tracker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricTracksOnlyReportedUpdates(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "loss.bin")
	metric := NewMetric("diayn_loss", filename)

	metric.Track(0, map[string]float64{"diayn_loss": 1.5, "actor_loss": 2.0})
	metric.Track(1, map[string]float64{})
	metric.Track(2, map[string]float64{"diayn_loss": 0.75})
	metric.Track(3, map[string]float64{"actor_loss": 3.0})

	metric.Save()

	data := LoadData(filename)
	require.Len(t, data, 2)
	assert.Equal(t, []float64{1.5, 0.75}, data)
}
