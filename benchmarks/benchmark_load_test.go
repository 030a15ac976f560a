package benchmarks_test

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/source"
)

// ---- Helpers ----

func smallUserSchema(tb testing.TB) *wrschema.Schema {
	tb.Helper()
	s, err := wrschema.New(
		wrschema.NewField("id", wrschema.Required(), wrschema.Nullable(false)),
		wrschema.NewField("name", wrschema.MaxLen(64)),
		wrschema.NewField("created", wrschema.Mapped(wrschema.DateTime()), wrschema.SourceNames("created_at"), wrschema.Default(nil)),
	)
	if err != nil {
		tb.Fatalf("schema build failed: %v", err)
	}
	return s
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice","created_at":"2024-01-02 03:04:05"}`)
}

// generateUsersJSON returns {"users":[{"id":"obj_0","name":"n0","age":0,"k0":"v0_0",...}, ...]}
func generateUsersJSON(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (48 + extraFields*16))
	buf.WriteString(`{"users":[`)
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"obj_%d","name":"n%d","age":%d`, i, i, i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(`,"k`)
			buf.WriteString(strconv.Itoa(k))
			buf.WriteString(`":"v`)
			buf.WriteString(strconv.Itoa(i))
			buf.WriteString(`"`)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func usersSchema(tb testing.TB) *wrschema.Schema {
	tb.Helper()
	item := wrschema.MustNew(
		wrschema.NewField("id", wrschema.Required()),
		wrschema.NewField("name"),
		wrschema.NewField("age", wrschema.Mapped(wrschema.Int), wrschema.Min(0)),
	)
	return wrschema.MustNew(wrschema.NewField("users", wrschema.Mapped(wrschema.List(item.Mapping()))))
}

// ---- Micro benchmarks (small inputs) ----

func Benchmark_Load_Object_Small(b *testing.B) {
	s := smallUserSchema(b)
	data, err := source.JSONBytes(smallUserJSON())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Load(data, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DecodeAndLoad_Object_Small(b *testing.B) {
	s := smallUserSchema(b)
	raw := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, err := source.JSONBytes(raw)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := s.Load(data, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Dump_Object_Small(b *testing.B) {
	s := smallUserSchema(b)
	data, _ := source.JSONBytes(smallUserJSON())
	rec, err := s.Load(data, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Dump(rec); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Larger inputs ----

func Benchmark_DecodeAndLoad_List(b *testing.B) {
	for _, n := range []int{100, 1000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			s := usersSchema(b)
			raw := generateUsersJSON(n, 8)
			b.ReportAllocs()
			b.SetBytes(int64(len(raw)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				data, err := source.JSONBytes(raw)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := s.Load(data, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func Benchmark_Reverse(b *testing.B) {
	s := smallUserSchema(b)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = s.Reverse()
	}
}
