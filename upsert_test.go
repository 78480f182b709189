package shopsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	ts := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestEngine_Upsert_FreshFile(t *testing.T) {
	engine := NewEngine(WithPath(tempStorePath(t)), WithClock(fixedClock(t)))

	res := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 400, 200)))
	require.True(t, res.OK, res.Message)

	assert.Equal(t, 2, res.Row)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 200, res.Height)
	assert.InDelta(t, 57.14, res.ColumnWidth, 0.01)

	records, err := engine.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "S1", records[0].ShopID)
	assert.Equal(t, "North", records[0].Region)
	assert.Equal(t, "2024-03-05\n10:30:00", records[0].LastUpdated)
}

func TestEngine_Upsert_SameKeyReusesRow(t *testing.T) {
	engine := NewEngine(WithPath(tempStorePath(t)), WithClock(fixedClock(t)))

	first := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 400, 200)))
	require.True(t, first.OK, first.Message)

	second := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 600, 900)))
	require.True(t, second.OK, second.Message)

	assert.Equal(t, first.Row, second.Row)

	// Oversized image is scaled to the height cap.
	assert.Equal(t, 200, second.Width)
	assert.Equal(t, 300, second.Height)

	records, err := engine.ListRecords()
	require.NoError(t, err)
	assert.Len(t, records, 1, "no duplicate row for an existing key")
}

func TestEngine_Upsert_DistinctKeysAppendRows(t *testing.T) {
	engine := NewEngine(WithPath(tempStorePath(t)))

	a := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 100, 100)))
	require.True(t, a.OK, a.Message)
	b := engine.Upsert("S1", "South", bytes.NewReader(createTestPNG(t, 100, 100)))
	require.True(t, b.OK, b.Message)

	assert.NotEqual(t, a.Row, b.Row)

	records, err := engine.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row, found := FindRow(records, Key{ShopID: "S1", Region: "South"})
	assert.True(t, found)
	assert.Equal(t, b.Row, row)
}

func TestEngine_Upsert_GrowPolicyKeepsWidestColumn(t *testing.T) {
	engine := NewEngine(WithPath(tempStorePath(t)))

	wide := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 400, 200)))
	require.True(t, wide.OK, wide.Message)

	narrow := engine.Upsert("S2", "North", bytes.NewReader(createTestPNG(t, 100, 100)))
	require.True(t, narrow.OK, narrow.Message)
	assert.InDelta(t, 57.14, narrow.ColumnWidth, 0.01)
}

func TestEngine_Upsert_MatchLatestPolicyShrinksColumn(t *testing.T) {
	engine := NewEngine(
		WithPath(tempStorePath(t)),
		WithColumnWidthPolicy(WidthMatchLatest),
	)

	wide := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 400, 200)))
	require.True(t, wide.OK, wide.Message)

	narrow := engine.Upsert("S2", "North", bytes.NewReader(createTestPNG(t, 600, 900)))
	require.True(t, narrow.OK, narrow.Message)
	assert.InDelta(t, 28.57, narrow.ColumnWidth, 0.01) // 200px after resize
}

func TestEngine_Upsert_SkippedRowDoesNotShiftTarget(t *testing.T) {
	path := tempStorePath(t)

	// Seed row 2 (valid), row 3 (incomplete key, as an external edit would
	// leave it), row 4 (valid).
	store, err := OpenStore(WithPath(path))
	require.NoError(t, err)
	_, err = store.AppendRow(Key{ShopID: "S1", Region: "North"})
	require.NoError(t, err)
	require.NoError(t, store.SetCellValue(3, ColShopID, "S2"))
	_, err = store.AppendRow(Key{ShopID: "S3", Region: "West"})
	require.NoError(t, err)
	require.NoError(t, store.Persist())
	require.NoError(t, store.Close())

	engine := NewEngine(WithPath(path), WithClock(fixedClock(t)))
	res := engine.Upsert("S3", "West", bytes.NewReader(createTestPNG(t, 100, 100)))
	require.True(t, res.OK, res.Message)
	assert.Equal(t, 4, res.Row, "upsert must target the record's real sheet row")

	records, err := engine.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "S3", records[1].ShopID)
	assert.Equal(t, "West", records[1].Region)
	assert.Equal(t, "2024-03-05\n10:30:00", records[1].LastUpdated)

	// The incomplete row in between stays untouched.
	reopened, err := OpenStore(WithPath(path))
	require.NoError(t, err)
	defer reopened.Close()
	val, err := reopened.file.GetCellValue(SheetName, "D3")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestEngine_Upsert_DecodeFailureLeavesRowsUnchanged(t *testing.T) {
	path := tempStorePath(t)
	engine := NewEngine(WithPath(path))

	ok := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 100, 100)))
	require.True(t, ok.OK, ok.Message)

	bad := engine.Upsert("S2", "South", bytes.NewReader([]byte("not an image")))
	assert.False(t, bad.OK)
	assert.NotEmpty(t, bad.Message)

	records, err := engine.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "S1", records[0].ShopID)
}

func TestEngine_Upsert_EmptyKeyRejected(t *testing.T) {
	engine := NewEngine(WithPath(tempStorePath(t)))

	res := engine.Upsert("", "North", bytes.NewReader(createTestPNG(t, 100, 100)))
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Message)
}

func TestEngine_Upsert_RowHeightFitsImage(t *testing.T) {
	path := tempStorePath(t)
	engine := NewEngine(WithPath(path))

	res := engine.Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 400, 200)))
	require.True(t, res.OK, res.Message)

	store, err := OpenStore(WithPath(path))
	require.NoError(t, err)
	defer store.Close()

	h, err := store.file.GetRowHeight(SheetName, res.Row)
	require.NoError(t, err)
	assert.InDelta(t, 150.4, h, 0.1)
}

func TestUpsert_PackageLevelRoundTrip(t *testing.T) {
	path := tempStorePath(t)

	res := Upsert("S1", "North", bytes.NewReader(createTestPNG(t, 80, 60)), WithPath(path))
	require.True(t, res.OK, res.Message)

	records, err := ListRecords(WithPath(path))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].LastUpdated)
}
