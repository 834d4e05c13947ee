// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ndev/portfolio/utility/kar"
)

func newBuilder(t *testing.T) *kar.Builder {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "ndev",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { builder.Close() })
	return builder
}

func TestAddAndWrite(t *testing.T) {
	builder := newBuilder(t)

	builder.Add("test", strings.NewReader(testString1))
	builder.Add("test2", strings.NewReader(testString2))

	if builder.Len() != 2 {
		t.Error("incorrect number of files present")
	}

	buf := bytes.NewBuffer([]byte{})
	num, err := builder.WriteTo(buf)
	if err != nil {
		t.Error(err)
	}
	if num != int64(buf.Len()) {
		t.Errorf("reported %d bytes, wrote %d", num, buf.Len())
	}
}

func TestAddReplaces(t *testing.T) {
	builder := newBuilder(t)

	builder.Add("test", strings.NewReader(testString1))
	builder.Add("test", strings.NewReader(testString2))

	if builder.Len() != 1 {
		t.Errorf("expected 1 file, got %d", builder.Len())
	}
}

func TestAddConcurrent(t *testing.T) {
	builder := newBuilder(t)

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := builder.Add(name, strings.NewReader(testString1+name)); err != nil {
				t.Error(err)
			}
		}(name)
	}
	wg.Wait()

	if builder.Len() != 6 {
		t.Errorf("expected 6 files, got %d", builder.Len())
	}
}
