package csvgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csvgo/codec"
	"github.com/hupe1980/csvgo/internal/conv"
	"github.com/hupe1980/csvgo/lines"
	"github.com/hupe1980/csvgo/snapshot"
	"github.com/hupe1980/csvgo/source"
)

// cityTable is sorted by id with gaps, so misses on both sides and between
// keys can be exercised. Offsets are the cumulative byte lengths of the
// preceding lines, terminators included.
const cityTable = "id,name,population\n" +
	"1,Berlin,3755251\n" +
	"2,Hamburg,1945532\n" +
	"3,Munich,1512491\n" +
	"5,Cologne,1073096\n" +
	"8,Frankfurt,759224\n"

var (
	cityIDs     = []uint64{1, 2, 3, 5, 8}
	cityNames   = []string{"Berlin", "Hamburg", "Munich", "Cologne", "Frankfurt"}
	cityOffsets = []uint32{19, 36, 54, 71, 89}
	cityLines   = []string{
		"1,Berlin,3755251",
		"2,Hamburg,1945532",
		"3,Munich,1512491",
		"5,Cologne,1073096",
		"8,Frankfurt,759224",
	}
)

type cityRecord struct {
	ID   uint64 `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	Off  uint32 `json:"off" msgpack:"off"`
}

func (c cityRecord) Offset() uint32 { return c.Off }

func decodeCity(line string, off uint32) (cityRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return cityRecord{}, fmt.Errorf("want 3 columns, got %d", len(fields))
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return cityRecord{}, err
	}
	return cityRecord{ID: id, Name: fields[1], Off: off}, nil
}

func cityID(c cityRecord) uint64 { return c.ID }

type cityFull struct {
	ID   uint64
	Name string
	Pop  int64
}

func decodeCityFull(line string) (cityFull, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return cityFull{}, fmt.Errorf("want 3 columns, got %d", len(fields))
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return cityFull{}, err
	}
	pop, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return cityFull{}, err
	}
	return cityFull{ID: id, Name: fields[1], Pop: pop}, nil
}

func writeCityTable(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(cityTable), 0o644))
	return path
}

// countingDecoder counts invocations, so tests can prove the decode path was
// or was not taken.
func countingDecoder(n *atomic.Int64) DecodeFunc[cityRecord, uint32] {
	return func(line string, off uint32) (cityRecord, error) {
		n.Add(1)
		return decodeCity(line, off)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("BuildsAllDataRows", func(t *testing.T) {
		ix, err := New(ctx, writeCityTable(t), decodeCity)
		require.NoError(t, err)

		require.Equal(t, len(cityIDs), ix.Len())
		for i := range cityIDs {
			rec := ix.At(i)
			assert.Equal(t, cityIDs[i], rec.ID)
			assert.Equal(t, cityNames[i], rec.Name)
			assert.Equal(t, cityOffsets[i], rec.Off)
		}
	})

	t.Run("HeaderNeverDecoded", func(t *testing.T) {
		ix, err := New(ctx, writeCityTable(t), decodeCity)
		require.NoError(t, err)

		for _, rec := range ix.Records() {
			assert.NotEqual(t, "name", rec.Name)
			assert.NotZero(t, rec.Off, "header line sits at offset 0")
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		ix, err := New(ctx, path, decodeCity)
		require.NoError(t, err)
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("HeaderOnly", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "header.csv")
		require.NoError(t, os.WriteFile(path, []byte("id,name,population\n"), 0o644))

		ix, err := New(ctx, path, decodeCity)
		require.NoError(t, err)
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("NoTrailingNewline", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cities.csv")
		require.NoError(t, os.WriteFile(path, []byte(strings.TrimSuffix(cityTable, "\n")), 0o644))

		ix, err := New(ctx, path, decodeCity)
		require.NoError(t, err)
		require.Equal(t, len(cityIDs), ix.Len())
		assert.Equal(t, "Frankfurt", ix.At(4).Name)
	})

	t.Run("DecodeErrorAbortsBuild", func(t *testing.T) {
		boom := errors.New("boom")
		decode := func(line string, off uint32) (cityRecord, error) {
			if strings.HasPrefix(line, "3,") {
				return cityRecord{}, boom
			}
			return decodeCity(line, off)
		}

		_, err := New(ctx, writeCityTable(t), decode)
		require.Error(t, err)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 2, de.Line)
		assert.Equal(t, int64(54), de.Offset)
		assert.Equal(t, "3,Munich,1512491", de.Raw)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := New(ctx, filepath.Join(t.TempDir(), "nope.csv"), decodeCity)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("OffsetOverflowAbortsBuild", func(t *testing.T) {
		// 2-byte header, then 4-byte rows. Row 64 starts at byte 258,
		// which an 8-bit offset cannot hold.
		var sb strings.Builder
		sb.WriteString("h\n")
		for range 80 {
			sb.WriteString("x,1\n")
		}
		path := filepath.Join(t.TempDir(), "narrow.csv")
		require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

		decode := func(line string, off uint8) (tinyRecord, error) {
			return tinyRecord{Key: line, Off: off}, nil
		}
		_, err := New(ctx, path, decode)
		require.Error(t, err)

		var re *lines.ErrRead
		require.ErrorAs(t, err, &re)
		assert.Equal(t, 65, re.Line)

		var oe *conv.OverflowError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, uint64(258), oe.Value)
		assert.Equal(t, "uint8", oe.Type)
	})

	t.Run("FromMemorySource", func(t *testing.T) {
		src := source.NewMemory("cities", []byte(cityTable))

		ix, err := NewFromSource(ctx, src, decodeCity)
		require.NoError(t, err)
		assert.Equal(t, len(cityIDs), ix.Len())
		assert.Same(t, src, ix.Source())
	})

	t.Run("RecordsIsACopy", func(t *testing.T) {
		ix, err := New(ctx, writeCityTable(t), decodeCity)
		require.NoError(t, err)

		records := ix.Records()
		records[0].Name = "mutated"
		assert.Equal(t, "Berlin", ix.At(0).Name)
	})

	t.Run("AllIteratesInBuildOrder", func(t *testing.T) {
		ix, err := New(ctx, writeCityTable(t), decodeCity)
		require.NoError(t, err)

		var got []uint64
		for i, rec := range ix.All() {
			assert.Equal(t, len(got), i)
			got = append(got, rec.ID)
		}
		assert.Equal(t, cityIDs, got)
	})

	t.Run("Metrics", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}

		_, err := New(ctx, writeCityTable(t), decodeCity, WithMetricsCollector(metrics))
		require.NoError(t, err)

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.BuildCount)
		assert.Equal(t, int64(0), stats.BuildErrors)
		assert.Equal(t, int64(len(cityIDs)), stats.BuildRows)
	})
}

type tinyRecord struct {
	Key string `json:"key"`
	Off uint8  `json:"off"`
}

func (r tinyRecord) Offset() uint8 { return r.Off }

func TestFromSnapshot(t *testing.T) {
	ctx := context.Background()

	// backdate pushes the source's mtime into the past so a snapshot
	// written "now" is strictly newer even on coarse filesystem clocks.
	backdate := func(t *testing.T, path string, d time.Duration) {
		t.Helper()
		old := time.Now().Add(-d)
		require.NoError(t, os.Chtimes(path, old, old))
	}

	t.Run("FirstOpenBuildsAndSaves", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		var decodes atomic.Int64
		ix, err := FromSnapshot(ctx, path, snapPath, countingDecoder(&decodes))
		require.NoError(t, err)
		assert.Equal(t, len(cityIDs), ix.Len())
		assert.Equal(t, int64(len(cityIDs)), decodes.Load())

		_, err = os.Stat(snapPath)
		require.NoError(t, err)
	})

	t.Run("SecondOpenSkipsDecode", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		first, err := FromSnapshot(ctx, path, snapPath, decodeCity)
		require.NoError(t, err)

		var decodes atomic.Int64
		second, err := FromSnapshot(ctx, path, snapPath, countingDecoder(&decodes))
		require.NoError(t, err)

		assert.Equal(t, int64(0), decodes.Load(), "fresh snapshot must not re-parse the table")
		assert.Equal(t, first.Records(), second.Records())
	})

	t.Run("TouchedSourceForcesRebuild", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		_, err := FromSnapshot(ctx, path, snapPath, decodeCity)
		require.NoError(t, err)

		// Rewrite the table with one extra row and an mtime after the
		// snapshot's.
		future := time.Now().Add(2 * time.Hour)
		require.NoError(t, os.WriteFile(path, []byte(cityTable+"9,Stuttgart,632865\n"), 0o644))
		require.NoError(t, os.Chtimes(path, future, future))

		var decodes atomic.Int64
		ix, err := FromSnapshot(ctx, path, snapPath, countingDecoder(&decodes))
		require.NoError(t, err)
		assert.Equal(t, len(cityIDs)+1, ix.Len())
		assert.Positive(t, decodes.Load())
	})

	t.Run("EqualModTimesForceRebuild", func(t *testing.T) {
		path := writeCityTable(t)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		_, err := FromSnapshot(ctx, path, snapPath, decodeCity)
		require.NoError(t, err)

		// Not strictly newer counts as expired.
		same := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(path, same, same))
		require.NoError(t, os.Chtimes(snapPath, same, same))

		var decodes atomic.Int64
		_, err = FromSnapshot(ctx, path, snapPath, countingDecoder(&decodes))
		require.NoError(t, err)
		assert.Positive(t, decodes.Load())
	})

	t.Run("CorruptSnapshotFailsWithoutRebuild", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		_, err := FromSnapshot(ctx, path, snapPath, decodeCity)
		require.NoError(t, err)

		// Flip one payload byte; header fields stay intact.
		raw, err := os.ReadFile(snapPath)
		require.NoError(t, err)
		raw[len(raw)-8] ^= 0xFF
		require.NoError(t, os.WriteFile(snapPath, raw, 0o644))

		var decodes atomic.Int64
		_, err = FromSnapshot(ctx, path, snapPath, countingDecoder(&decodes))
		require.Error(t, err)
		assert.ErrorIs(t, err, snapshot.ErrChecksum)
		assert.Equal(t, int64(0), decodes.Load(), "corrupt snapshots must not fall back to a rebuild")
	})

	t.Run("TruncatedSnapshotFails", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		_, err := FromSnapshot(ctx, path, snapPath, decodeCity)
		require.NoError(t, err)

		raw, err := os.ReadFile(snapPath)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(snapPath, raw[:len(raw)/2], 0o644))

		_, err = FromSnapshot(ctx, path, snapPath, decodeCity)
		require.Error(t, err)
	})

	t.Run("CodecSelectedBySnapshotHeader", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		first, err := FromSnapshot(ctx, path, snapPath, decodeCity, WithCodec(codec.Msgpack{}))
		require.NoError(t, err)

		// No codec option here: the loader picks msgpack from the header.
		var decodes atomic.Int64
		second, err := FromSnapshot(ctx, path, snapPath, countingDecoder(&decodes))
		require.NoError(t, err)
		assert.Equal(t, int64(0), decodes.Load())
		assert.Equal(t, first.Records(), second.Records())
	})

	t.Run("CompressionRoundTrips", func(t *testing.T) {
		for _, ct := range []snapshot.CompressionType{
			snapshot.CompressionNone,
			snapshot.CompressionLZ4,
			snapshot.CompressionZSTD,
		} {
			t.Run(ct.String(), func(t *testing.T) {
				path := writeCityTable(t)
				backdate(t, path, 2*time.Hour)
				snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

				first, err := FromSnapshot(ctx, path, snapPath, decodeCity, WithCompression(ct))
				require.NoError(t, err)

				second, err := FromSnapshot(ctx, path, snapPath, decodeCity)
				require.NoError(t, err)
				assert.Equal(t, first.Records(), second.Records())
			})
		}
	})

	t.Run("MemoryStoreAndSource", func(t *testing.T) {
		src := source.NewMemory("cities", []byte(cityTable))
		src.SetModTime(time.Now().Add(-2 * time.Hour))
		store := snapshot.NewMemoryStore()

		first, err := FromSnapshotStore(ctx, src, store, decodeCity)
		require.NoError(t, err)

		var decodes atomic.Int64
		second, err := FromSnapshotStore(ctx, src, store, countingDecoder(&decodes))
		require.NoError(t, err)
		assert.Equal(t, int64(0), decodes.Load())
		assert.Equal(t, first.Records(), second.Records())
		assert.Same(t, src, second.Source())
	})

	t.Run("SaveFailureFailsCall", func(t *testing.T) {
		src := source.NewMemory("cities", []byte(cityTable))
		store := &failingStore{saveErr: errors.New("disk full")}

		_, err := FromSnapshotStore(ctx, src, store, decodeCity)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to save snapshot")
	})

	t.Run("ModTimeFailureFailsCall", func(t *testing.T) {
		src := source.NewMemory("cities", []byte(cityTable))
		store := &failingStore{modTimeErr: errors.New("backend unavailable")}

		_, err := FromSnapshotStore(ctx, src, store, decodeCity)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to stat snapshot")
	})

	t.Run("Metrics", func(t *testing.T) {
		path := writeCityTable(t)
		backdate(t, path, 2*time.Hour)
		snapPath := filepath.Join(filepath.Dir(path), "cities.snap")

		metrics := &BasicMetricsCollector{}
		_, err := FromSnapshot(ctx, path, snapPath, decodeCity, WithMetricsCollector(metrics))
		require.NoError(t, err)
		_, err = FromSnapshot(ctx, path, snapPath, decodeCity, WithMetricsCollector(metrics))
		require.NoError(t, err)

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.BuildCount)
		assert.Equal(t, int64(1), stats.SnapshotSaveCount)
		assert.Equal(t, int64(1), stats.SnapshotLoadCount)
		assert.Equal(t, int64(0), stats.SnapshotLoadErrors)
	})
}

// failingStore fails selected snapshot.Store operations, for error paths.
type failingStore struct {
	modTimeErr error
	saveErr    error
}

func (s *failingStore) Name() string { return "failing" }

func (s *failingStore) ModTime(ctx context.Context) (time.Time, error) {
	if s.modTimeErr != nil {
		return time.Time{}, s.modTimeErr
	}
	return time.Time{}, snapshot.ErrNotExist
}

func (s *failingStore) Open(ctx context.Context) (io.ReadCloser, error) {
	return nil, snapshot.ErrNotExist
}

func (s *failingStore) Save(ctx context.Context, write func(w io.Writer) error) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return write(io.Discard)
}
