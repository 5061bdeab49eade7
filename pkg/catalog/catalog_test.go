package catalog

import (
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_RecordAndGet(t *testing.T) {
	c := openTestCatalog(t)

	job := &Job{
		Operation:     OpCompress,
		Source:        "data/report.csv",
		Output:        "data/report_deduped.min",
		FileType:      "csv",
		DuplicateRows: 3,
		InputBytes:    1000,
		OutputBytes:   250,
	}
	require.NoError(t, c.Record(job))
	assert.NotEqual(t, ksuid.Nil, job.ID)
	assert.False(t, job.CreatedAt.IsZero())

	got, err := c.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Source, got.Source)
	assert.Equal(t, 3, got.DuplicateRows)
	assert.Equal(t, job.ID, got.ID)
	assert.InDelta(t, 75.0, got.Reduction(), 0.001)
}

func TestCatalog_GetMissing(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.Get(ksuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestCatalog_ListNewestFirst(t *testing.T) {
	c := openTestCatalog(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []ksuid.KSUID
	for i := 0; i < 5; i++ {
		id, err := ksuid.NewRandomWithTime(base.Add(time.Duration(i) * time.Minute))
		require.NoError(t, err)
		ids = append(ids, id)
		require.NoError(t, c.Record(&Job{ID: id, Operation: OpCompress, Source: id.String()}))
	}

	jobs, err := c.List(0)
	require.NoError(t, err)
	require.Len(t, jobs, 5)
	for i, j := range jobs {
		assert.Equal(t, ids[4-i], j.ID)
	}

	limited, err := c.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[4], limited[0].ID)
	assert.Equal(t, ids[3], limited[1].ID)
}

func TestCatalog_Delete(t *testing.T) {
	c := openTestCatalog(t)
	job := &Job{Operation: OpDecompress, Source: "a.min"}
	require.NoError(t, c.Record(job))

	require.NoError(t, c.Delete(job.ID))
	_, err := c.Get(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	jobs, err := c.List(0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCatalog_OnDisk(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir)
	require.NoError(t, err)
	job := &Job{Operation: OpCompress, Source: "x.txt"}
	require.NoError(t, c.Record(job))
	require.NoError(t, c.Close())

	c, err = Open(dir)
	require.NoError(t, err)
	defer c.Close()
	got, err := c.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "x.txt", got.Source)
}

func TestJob_ReductionWithoutInput(t *testing.T) {
	assert.Zero(t, (&Job{OutputBytes: 10}).Reduction())
}

func TestCatalog_ListOrdersWithinOneSecond(t *testing.T) {
	c := openTestCatalog(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []ksuid.KSUID
	for i := 0; i < 4; i++ {
		job := &Job{Operation: OpCompress, CreatedAt: base.Add(time.Duration(i) * time.Millisecond)}
		require.NoError(t, c.Record(job))
		ids = append(ids, job.ID)
	}

	jobs, err := c.List(0)
	require.NoError(t, err)
	require.Len(t, jobs, 4)
	for i, j := range jobs {
		assert.Equal(t, ids[3-i], j.ID)
	}
}

func TestCatalog_DeleteUnknown(t *testing.T) {
	c := openTestCatalog(t)
	assert.NoError(t, c.Delete(ksuid.New()))
}
