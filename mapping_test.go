package wrschema_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/wrschema"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func assertSameTime(t *testing.T, want time.Time, got any) {
	t.Helper()
	tm, ok := got.(time.Time)
	require.Truef(t, ok, "expected time.Time, got %T", got)
	assert.Truef(t, want.Equal(tm), "want %v, got %v", want, tm)
}

func TestMappings_NoneAware(t *testing.T) {
	cases := map[string]*wrschema.Mapping{
		"int":      wrschema.Int,
		"str":      wrschema.Str,
		"float":    wrschema.Float,
		"bool":     wrschema.Bool,
		"date":     wrschema.Date(),
		"datetime": wrschema.DateTime(),
		"rfc3339":  wrschema.RFC3339(),
		"uuid":     wrschema.UUID(),
		"list":     wrschema.List(wrschema.Int),
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			v, err := m.Load(nil)
			require.NoError(t, err)
			assert.Nil(t, v)

			raw, err := m.Dump(nil)
			require.NoError(t, err)
			assert.Nil(t, raw)

			f := wrschema.NewField("f", wrschema.Mapped(m))
			v, err = f.Load(nil)
			require.NoError(t, err)
			assert.Nil(t, v)

			g := wrschema.NewField("g", wrschema.Mapped(m), wrschema.Nullable(false))
			_, err = g.Load(nil)
			assert.ErrorIs(t, err, wrschema.ErrInvalid)
		})
	}
}

func TestPrimitiveMappings_Convert(t *testing.T) {
	v, err := wrschema.Int.Load("10")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = wrschema.Int.Load(float64(60))
	require.NoError(t, err)
	assert.Equal(t, 60, v)

	v, err = wrschema.Int.Load(json.Number("42"))
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = wrschema.Int.Load("abc")
	assert.Error(t, err)

	v, err = wrschema.Str.Load(10)
	require.NoError(t, err)
	assert.Equal(t, "10", v)

	v, err = wrschema.Str.Load([]any{10})
	require.NoError(t, err)
	assert.Equal(t, "[10]", v)

	v, err = wrschema.Float.Load("7.8")
	require.NoError(t, err)
	assert.Equal(t, 7.8, v)

	v, err = wrschema.Bool.Load("true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = wrschema.Bool.Load(0)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	assert.Equal(t, "int", wrschema.Int.Kind())
}

func TestMapping_CompositeAndReverse(t *testing.T) {
	lower := wrschema.NewMapping(func(v any) (any, error) { return strings.ToLower(v.(string)), nil }, nil)
	toInt := wrschema.NewMapping(wrschema.Int.Load, nil)

	m := lower.Append(toInt)
	v, err := m.Load("555")
	require.NoError(t, err)
	assert.Equal(t, 555, v)

	raw, err := m.Dump(555)
	require.NoError(t, err)
	assert.Equal(t, "555", raw)

	n := m.Reverse()
	v, err = n.Load(555)
	require.NoError(t, err)
	assert.Equal(t, "555", v)

	raw, err = n.Dump("555")
	require.NoError(t, err)
	assert.Equal(t, 555, raw)
}

func TestMapping_AppendDumpOrderMirrorsLoad(t *testing.T) {
	var trace []string
	step := func(name string) *wrschema.Mapping {
		return wrschema.NewMapping(
			func(v any) (any, error) { trace = append(trace, "load:"+name); return v, nil },
			func(v any) (any, error) { trace = append(trace, "dump:"+name); return v, nil },
		)
	}
	m := step("a").Append(step("b")).Append(step("c"))

	_, err := m.Load(1)
	require.NoError(t, err)
	_, err = m.Dump(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"load:a", "load:b", "load:c", "dump:c", "dump:b", "dump:a"}, trace)
}

func TestMapping_DoubleReverseIsOriginal(t *testing.T) {
	m := wrschema.Date("02.01.2006")
	rr := m.Reverse().Reverse()

	v, err := rr.Load("31.12.2017")
	require.NoError(t, err)
	assertSameTime(t, day(2017, 12, 31), v)

	raw, err := rr.Dump(day(2017, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "31.12.2017", raw)
	assert.Equal(t, m.Formats(), rr.Formats())
}

func TestDateMappings_ReverseAndLists(t *testing.T) {
	strToDate := wrschema.Date("02.01.2006")
	v, err := strToDate.Load("31.12.2017")
	require.NoError(t, err)
	assertSameTime(t, day(2017, 12, 31), v)

	dateToStr := strToDate.Reverse()
	raw, err := dateToStr.Load(time.Date(2017, 12, 31, 12, 55, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "31.12.2017", raw)

	listOfDates := wrschema.List(wrschema.Date("02.01.2006"))
	v, err = listOfDates.Load([]any{"01.01.2018", "02.01.2018"})
	require.NoError(t, err)
	items := v.([]any)
	require.Len(t, items, 2)
	assertSameTime(t, day(2018, 1, 1), items[0])
	assertSameTime(t, day(2018, 1, 2), items[1])

	serializer := listOfDates.Reverse()
	raw, err = serializer.Load([]any{day(2018, 1, 1), day(2018, 1, 2)})
	require.NoError(t, err)
	assert.Equal(t, []any{"01.01.2018", "02.01.2018"}, raw)
}

func TestDateMappings_Formats(t *testing.T) {
	date := wrschema.Date("02/01/2006", "02.01.2006.")
	assert.Equal(t, []string{"02/01/2006", "02.01.2006."}, date.Formats())
	assert.Equal(t, []string{wrschema.DateLayout}, wrschema.Date().Formats())
	assert.Equal(t, []string{wrschema.DateTimeLayout}, wrschema.DateTime().Formats())

	v, err := date.Load("01.03.2018.")
	require.NoError(t, err)
	assertSameTime(t, day(2018, 3, 1), v)

	v, err = date.Load("01/03/2018")
	require.NoError(t, err)
	assertSameTime(t, day(2018, 3, 1), v)

	raw, err := date.Dump(day(2018, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "01/03/2018", raw)
}

func TestDateMappings_ReportLastLayoutError(t *testing.T) {
	_, err := wrschema.Date("02/01/2006", "02.01.2006.").Load("nope")
	require.Error(t, err)

	_, lastErr := time.Parse("02.01.2006.", "nope")
	assert.EqualError(t, err, lastErr.Error())
}

func TestDateMappings_TimeInputs(t *testing.T) {
	at := time.Date(2018, 1, 1, 12, 55, 0, 0, time.UTC)

	v, err := wrschema.Date().Load(at)
	require.NoError(t, err)
	assertSameTime(t, day(2018, 1, 1), v)

	v, err = wrschema.DateTime().Load(at)
	require.NoError(t, err)
	assertSameTime(t, at, v)

	_, err = wrschema.DateTime().Load(42)
	assert.Error(t, err)

	raw, err := wrschema.DateTime().Dump(time.Date(2018, 12, 31, 16, 55, 33, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2018-12-31 16:55:33", raw)
}

func TestRFC3339_Roundtrip(t *testing.T) {
	m := wrschema.RFC3339()
	v, err := m.Load("2025-01-01T00:00:00Z")
	require.NoError(t, err)
	assertSameTime(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), v)

	raw, err := m.Dump(v)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00Z", raw)
}

func TestListMapping_Dump(t *testing.T) {
	ints := wrschema.List(wrschema.Int)
	raw, err := ints.Dump([]any{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, raw)

	raw, err = ints.Dump([]any{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, raw)

	raw, err = ints.Dump([]any{nil})
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, raw)

	dates := wrschema.List(wrschema.Date())
	raw, err = dates.Dump([]any{day(2018, 1, 1), time.Date(2018, 12, 31, 12, 55, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, []any{"2018-01-01", "2018-12-31"}, raw)

	raw, err = dates.Dump([]time.Time{day(2018, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, []any{"2018-02-01"}, raw)
}

func TestListMapping_ElementErrorCarriesIndex(t *testing.T) {
	_, err := wrschema.List(wrschema.Int).Load([]any{"1", "x"})
	fe, ok := wrschema.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "1", fe.Name)
	assert.Equal(t, wrschema.ReasonMapping, fe.Reason)

	_, err = wrschema.List(wrschema.Int).Load("not a list")
	assert.Error(t, err)
}

func TestUUIDMapping(t *testing.T) {
	id := uuid.MustParse("6f1c3f0e-8a37-4d3c-9a43-0a8a2c3c9b10")
	m := wrschema.UUID()

	v, err := m.Load(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, v)

	raw, err := m.Dump(id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), raw)

	_, err = m.Load("not-a-uuid")
	assert.Error(t, err)
}
