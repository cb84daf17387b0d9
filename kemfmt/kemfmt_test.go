// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemfmt

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadCPU(t *testing.T) {
	const data = `cycles unit,cycles unit,cycles unit
kyberTest
1,2,3,99
4,5,6,99
7,8,9,99
`
	tab, err := ReadCPU(strings.NewReader(data), "test", ',', 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"kyberTest"}; !reflect.DeepEqual(tab.KEMs, want) {
		t.Errorf("KEMs = %q, want %q", tab.KEMs, want)
	}
	wantFields := []Field{{"cycles", "unit"}, {"cycles", "unit"}, {"cycles", "unit"}}
	if !reflect.DeepEqual(tab.Fields, wantFields) {
		t.Errorf("Fields = %+v, want %+v", tab.Fields, wantFields)
	}
	wantRows := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", tab.Rows, wantRows)
	}
}

func TestReadCPUOrder(t *testing.T) {
	const data = `keygen ms,encaps ms,decaps ms
kyber512
1,1,
2,2,
3,3,
frodo640
4,4,
5,5,
6,6,
`
	tab, err := ReadCPU(strings.NewReader(data), "test", ',', 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tab.Rows); got != 3*len(tab.KEMs) {
		t.Fatalf("got %d rows for %d KEMs", got, len(tab.KEMs))
	}
	if got, want := tab.FieldNames(), []string{"keygen", "encaps", "decaps"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames() = %q, want %q", got, want)
	}
	if got, want := tab.Units(), []string{"ms", "ms", "ms"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Units() = %q, want %q", got, want)
	}
	if got, want := tab.Row(1, 0), []float64{4, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Row(1, 0) = %v, want %v", got, want)
	}
	if got, want := tab.FieldRows(2), [][]float64{{3, 3}, {6, 6}}; !reflect.DeepEqual(got, want) {
		t.Errorf("FieldRows(2) = %v, want %v", got, want)
	}
}

func TestReadCPUErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		data string
		nKEM int
		msg  string
	}{
		{"no KEM count", "a u,b u,c u\n", 0, "missing KEM count"},
		{"short header", "a u,b u\n", 1, "test:1: field header has 2 cells"},
		{"no unit", "a,b u,c u\n", 1, "test:1: field header cell 1"},
		{"short file", "a u,b u,c u\nk\n1,2,\n2,3,\n", 1, "test:5: unexpected end of file"},
		{"missing block", "a u,b u,c u\nk\n1,\n2,\n3,\n", 2, "test:6: unexpected end of file, want KEM name"},
		{"not a number", "a u,b u,c u\nk\n1,x,\n2,3,\n3,4,\n", 1, `test:3: column 2: "x" is not a number`},
		{"only trailing cell", "a u,b u,c u\nk\n1\n2,\n3,\n", 1, "test:3:"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadCPU(strings.NewReader(test.data), "test", ',', test.nKEM)
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v does not wrap ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %q does not contain %q", err, test.msg)
			}
		})
	}
}

func TestReadMemory(t *testing.T) {
	const data = "A,B\n1,2\n1,2,3\n"
	tab, err := ReadMemory(strings.NewReader(data), "test", ',')
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(tab.KEMs, want) {
		t.Errorf("KEMs = %q, want %q", tab.KEMs, want)
	}
	wantRows := [][]float64{{1, 2, 0, 0}, {1, 2, 3, 0}}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", tab.Rows, wantRows)
	}
	if got := tab.FieldNames(); !reflect.DeepEqual(got, []string{MemoryField}) {
		t.Errorf("FieldNames() = %q", got)
	}
}

func TestReadMemoryPadding(t *testing.T) {
	const data = "a;b;c\n5;5;5;5;5\n7\n1;2\n"
	tab, err := ReadMemory(strings.NewReader(data), "test", ';')
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range tab.Rows {
		if len(row) != 6 {
			t.Errorf("row %d has length %d, want 6", i, len(row))
		}
		if row[len(row)-1] != 0 {
			t.Errorf("row %d ends in %v, want 0", i, row[len(row)-1])
		}
	}
}

func TestReadMemoryEmptyLog(t *testing.T) {
	const data = "A,B\n\n1,2\r\n"
	tab, err := ReadMemory(strings.NewReader(data), "test", ',')
	if err != nil {
		t.Fatal(err)
	}
	wantRows := [][]float64{{0, 0, 0}, {1, 2, 0}}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", tab.Rows, wantRows)
	}
}

func TestReadMemoryErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		data string
		msg  string
	}{
		{"empty", "", "test:1: unexpected end of file"},
		{"float", "A\n1.5,2\n", `test:2: column 1: "1.5" is not an integer`},
		{"too few logs", "A,B\n1,2\n", "found 1 memory logs for 2 KEMs"},
		{"too many logs", "A\n1\n2\n", "found 2 memory logs for 1 KEMs"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadMemory(strings.NewReader(test.data), "test", ',')
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("got %v, want ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %q does not contain %q", err, test.msg)
			}
		})
	}
}

// packetBlock returns the ten records of one KEM block.
func packetBlock(kem, packets, bytes, duration string) string {
	recs := []string{kem, packets, bytes, "ign", "ign", "ign", "ign", duration, "ign", "ign"}
	return strings.Join(recs, "\n") + "\n"
}

const packetHeader = "Packets,Bytes,x,x,x,x,Duration\n"

func TestReadPacket(t *testing.T) {
	data := packetHeader + packetBlock("X", "1,2", "100,200", "0.5,0.7")
	tab, err := ReadPacket(strings.NewReader(data), "test", ',', nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"X"}; !reflect.DeepEqual(tab.KEMs, want) {
		t.Errorf("KEMs = %q, want %q", tab.KEMs, want)
	}
	if got, want := tab.FieldNames(), []string{"Packets", "Bytes", "Duration"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames() = %q, want %q", got, want)
	}
	wantRows := [][]float64{{1, 2}, {100, 200}, {0.5, 0.7}}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", tab.Rows, wantRows)
	}
}

func TestReadPacketBlocks(t *testing.T) {
	data := packetHeader +
		packetBlock("kyber512", "10", "1000", "1.5") +
		packetBlock("P-256", "20", "2000", "2.5") +
		// The last block may stop after its last field.
		strings.Join([]string{"X25519", "30", "3000", "i", "i", "i", "i", "3.5"}, "\n") + "\n"
	tab, err := ReadPacket(strings.NewReader(data), "test", ',', &DefaultPacketLayout, 3)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"kyber512", "P-256", "X25519"}; !reflect.DeepEqual(tab.KEMs, want) {
		t.Errorf("KEMs = %q, want %q", tab.KEMs, want)
	}
	for k := range tab.KEMs {
		want := []float64{float64(10 * (k + 1))}
		if got := tab.Row(k, 0); !reflect.DeepEqual(got, want) {
			t.Errorf("packets of KEM %d = %v, want %v", k, got, want)
		}
		want = []float64{float64(1000 * (k + 1))}
		if got := tab.Row(k, 1); !reflect.DeepEqual(got, want) {
			t.Errorf("bytes of KEM %d = %v, want %v", k, got, want)
		}
		want = []float64{float64(k) + 1.5}
		if got := tab.Row(k, 2); !reflect.DeepEqual(got, want) {
			t.Errorf("duration of KEM %d = %v, want %v", k, got, want)
		}
	}
}

func TestReadPacketBlankRecords(t *testing.T) {
	// Empty records still take their place in a block.
	blank := strings.Join([]string{"X", "1", "100", "", "ign", "", "ign", "0.5", "", ""}, "\n") + "\n"
	data := packetHeader + blank + packetBlock("Y", "2", "200", "0.7")
	tab, err := ReadPacket(strings.NewReader(data), "test", ',', nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"X", "Y"}; !reflect.DeepEqual(tab.KEMs, want) {
		t.Errorf("KEMs = %q, want %q", tab.KEMs, want)
	}
	wantRows := [][]float64{{1}, {100}, {0.5}, {2}, {200}, {0.7}}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", tab.Rows, wantRows)
	}
}

func TestReadPacketErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		data string
		nKEM int
		msg  string
	}{
		{"short header", "a,b,c\n" + packetBlock("X", "1", "1", "1"), 0, "test:1: field header has 3 cells, want a label in column 7"},
		{"no blocks", packetHeader, 0, "no KEM blocks"},
		{"truncated block", packetHeader + "X\n1\n2\n", 0, "test:5: unexpected end of file in block 1"},
		{"float packets", packetHeader + packetBlock("X", "1.5", "1", "1"), 0, `test:3: column 1: "1.5" is not an integer`},
		{"bad duration", packetHeader + packetBlock("X", "1", "1", "soon"), 0, `test:9: column 1: "soon" is not a number`},
		{"KEM count", packetHeader + packetBlock("X", "1", "1", "1"), 2, "found 1 KEM blocks, want 2"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadPacket(strings.NewReader(test.data), "test", ',', nil, test.nKEM)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("got %v, want ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %q does not contain %q", err, test.msg)
			}
		})
	}
}

func TestPacketLayout(t *testing.T) {
	l := DefaultPacketLayout
	if err := l.validate(); err != nil {
		t.Fatalf("DefaultPacketLayout: %v", err)
	}
	if got := l.lastOffset(); got != PacketDurationOffset {
		t.Errorf("lastOffset() = %d, want %d", got, PacketDurationOffset)
	}

	// A custom layout: KEM name, then a single float field, in
	// blocks of three.
	custom := &PacketLayout{
		BlockLen: 3,
		Fields:   []PacketField{{Column: 1, Offset: 2}},
	}
	data := "x,latency\nA\nskip\n0.25\nB\nskip\n0.5\n"
	tab, err := ReadPacket(strings.NewReader(data), "test", ',', custom, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]float64{{0.25}, {0.5}}; !reflect.DeepEqual(tab.Rows, want) {
		t.Errorf("Rows = %v, want %v", tab.Rows, want)
	}

	bad := &PacketLayout{BlockLen: 3, Fields: []PacketField{{Offset: 0}}}
	if _, err := ReadPacket(strings.NewReader(data), "test", ',', bad, 0); err == nil {
		t.Error("layout reusing the KEM offset: want error, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := LoadMemory(path, ',')
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("LoadMemory(%q) = %v, want ErrMissingFile", path, err)
	}
	if !strings.Contains(err.Error(), "absent.csv") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestLoadCPU(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.csv")
	data := "t ms,t ms,t ms\nk\n1,\n2,\n3,\n"
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
	tab, err := LoadCPU(path, ',', 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]float64{{1}, {2}, {3}}; !reflect.DeepEqual(tab.Rows, want) {
		t.Errorf("Rows = %v, want %v", tab.Rows, want)
	}

	_, err = LoadCPU(path, ',', 2)
	var serr *SyntaxError
	if !errors.As(err, &serr) || serr.FileName != path {
		t.Errorf("LoadCPU with too many KEMs = %v, want *SyntaxError for %s", err, path)
	}
}
