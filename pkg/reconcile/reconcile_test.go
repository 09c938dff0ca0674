package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
	"github.com/SilviaTerra/BiometricsBits/pkg/reconcile"
)

func metric(id string, tpa float64, year int) inventory.PlotMetric {
	return inventory.PlotMetric{
		PlotID:        id,
		TreesPerAcre:  tpa,
		InventoryYear: year,
	}
}

func TestSourcesRowCountAdditivity(t *testing.T) {
	tests := []struct {
		name     string
		datamart []inventory.PlotMetric
		bulk     []inventory.PlotMetric
	}{
		{
			name:     "disjoint plot sets",
			datamart: []inventory.PlotMetric{metric("1", 100, 2015), metric("2", 80, 2016)},
			bulk:     []inventory.PlotMetric{metric("3", 90, 2015)},
		},
		{
			name:     "overlapping plot sets",
			datamart: []inventory.PlotMetric{metric("1", 100, 2015)},
			bulk:     []inventory.PlotMetric{metric("1", 95, 2015), metric("2", 40, 2017)},
		},
		{
			name:     "one side empty",
			datamart: nil,
			bulk:     []inventory.PlotMetric{metric("9", 12, 2011)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := reconcile.Sources(map[inventory.SourceID][]inventory.PlotMetric{
				inventory.SourceDataMart: tt.datamart,
				inventory.SourceBulk:     tt.bulk,
			})
			assert.Len(t, result.Rows, len(tt.datamart)+len(tt.bulk))
		})
	}
}

func TestSourcesTagsEveryRow(t *testing.T) {
	result := reconcile.Sources(map[inventory.SourceID][]inventory.PlotMetric{
		inventory.SourceDataMart: {metric("1", 100, 2015)},
		inventory.SourceBulk:     {metric("1", 95, 2015)},
	})

	counts := make(map[inventory.SourceID]int)
	for _, row := range result.Rows {
		counts[row.Source]++
	}
	assert.Equal(t, 1, counts[inventory.SourceDataMart])
	assert.Equal(t, 1, counts[inventory.SourceBulk])
}

func TestSourcesNormalizesPlotIDs(t *testing.T) {
	result := reconcile.Sources(map[inventory.SourceID][]inventory.PlotMetric{
		inventory.SourceBulk: {metric("40073521010.0", 60, 2014)},
	})

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "40073521010", result.Rows[0].PlotID)
}

func TestSourcesKeepsFullMetrics(t *testing.T) {
	datamart := []inventory.PlotMetric{metric("1", 100, 2015)}
	bulk := []inventory.PlotMetric{metric("2", 80, 2016)}

	result := reconcile.Sources(map[inventory.SourceID][]inventory.PlotMetric{
		inventory.SourceDataMart: datamart,
		inventory.SourceBulk:     bulk,
	})

	// The unreduced per-source collections remain available alongside rows.
	assert.Equal(t, datamart, result.Metrics[inventory.SourceDataMart])
	assert.Equal(t, bulk, result.Metrics[inventory.SourceBulk])
}

func TestSourcesDeterministicOrder(t *testing.T) {
	in := map[inventory.SourceID][]inventory.PlotMetric{
		inventory.SourceDataMart: {metric("b", 1, 2015), metric("a", 2, 2015)},
		inventory.SourceBulk:     {metric("z", 3, 2015)},
	}

	first := reconcile.Sources(in)
	second := reconcile.Sources(in)
	assert.Equal(t, first.Rows, second.Rows)

	// bulk sorts before datamart; within a source, input order is kept.
	require.Len(t, first.Rows, 3)
	assert.Equal(t, inventory.SourceBulk, first.Rows[0].Source)
	assert.Equal(t, "b", first.Rows[1].PlotID)
	assert.Equal(t, "a", first.Rows[2].PlotID)
}

func TestTag(t *testing.T) {
	metrics := []inventory.PlotMetric{metric("007", 50, 2013)}

	tagged := reconcile.Tag(metrics, inventory.SourceDataMart)
	require.Len(t, tagged, 1)
	assert.Equal(t, inventory.SourceDataMart, tagged[0].Source)
	assert.Equal(t, "7", tagged[0].PlotID)

	// Input is not mutated.
	assert.Equal(t, "007", metrics[0].PlotID)
	assert.Equal(t, inventory.SourceID(""), metrics[0].Source)
}
