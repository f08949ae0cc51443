package core

import (
	"bytes"
	"context"
	"mime/multipart"
	"strconv"
	"testing"
)

// ============================================================================
// Registry Benchmarks
// ============================================================================

// BenchmarkRegistryCreate benchmarks metadata validation plus insertion.
// This runs once per POST /submit.
func BenchmarkRegistryCreate(b *testing.B) {
	reg := NewRegistry()
	height := 170
	in := SubmissionInput{Name: "Alice", Height: &height}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := reg.Create(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRegistryListUploaded benchmarks GET /data over a populated registry.
func BenchmarkRegistryListUploaded(b *testing.B) {
	reg := NewRegistry()
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		id, err := reg.Create(ctx, SubmissionInput{Name: "user" + strconv.Itoa(i)})
		if err != nil {
			b.Fatal(err)
		}
		if i%2 == 0 {
			if err := reg.Bind(id, "file"+strconv.Itoa(i)+".png"); err != nil {
				b.Fatal(err)
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.ListUploaded()
	}
}

// BenchmarkRegistryExists_Parallel benchmarks concurrent lookups under the read lock.
func BenchmarkRegistryExists_Parallel(b *testing.B) {
	reg := NewRegistry()
	id, err := reg.Create(context.Background(), SubmissionInput{Name: "Alice"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			reg.Exists(id)
		}
	})
}

// ============================================================================
// Validator Benchmarks
// ============================================================================

func benchmarkBody(b *testing.B, size int) ([]byte, string) {
	b.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(FileFieldName, "photo.png")
	if err != nil {
		b.Fatal(err)
	}
	if _, err := part.Write(bytes.Repeat([]byte{0xAB}, size)); err != nil {
		b.Fatal(err)
	}
	if err := w.Close(); err != nil {
		b.Fatal(err)
	}
	return buf.Bytes(), w.Boundary()
}

func benchmarkConsume(b *testing.B, size int) {
	body, boundary := benchmarkBody(b, size)
	reg := NewRegistry()
	v := NewValidator(reg)
	ctx := context.Background()

	b.SetBytes(int64(len(body)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		id, err := reg.Create(ctx, SubmissionInput{Name: "Alice"})
		if err != nil {
			b.Fatal(err)
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		b.StartTimer()

		if _, err := v.Consume(ctx, id, mr); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConsume_Small benchmarks a typical small upload.
func BenchmarkConsume_Small(b *testing.B) {
	benchmarkConsume(b, 4<<10)
}

// BenchmarkConsume_Large benchmarks an upload near the default size limit.
func BenchmarkConsume_Large(b *testing.B) {
	benchmarkConsume(b, 8<<20)
}
