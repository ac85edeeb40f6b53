package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/fynance/internal/encoding"
)

const householdCSV = "Tanggal;Jenis;Kategori;Jumlah;Keterangan;Oleh\n" +
	"2024-10-01;Pengeluaran;Makanan & Minuman;25.000;Kopi di Café Améra;budi@example.com\n"

func mustEncode(t *testing.T, s string, enc interface{ String(string) (string, error) }) []byte {
	t.Helper()

	out, err := enc.String(s)
	require.NoError(t, err)

	return []byte(out)
}

func TestDetect(t *testing.T) {
	type testCase struct {
		name    string
		input   []byte
		want    string
		charset encoding.Charset
		bom     bool
	}

	tests := []testCase{
		{
			name:    "UTF8Passthrough",
			input:   []byte(householdCSV),
			want:    householdCSV,
			charset: encoding.UTF8,
		},
		{
			name:    "UTF8BOMIsStripped",
			input:   append([]byte{0xEF, 0xBB, 0xBF}, householdCSV...),
			want:    householdCSV,
			charset: encoding.UTF8,
			bom:     true,
		},
		{
			name:    "Windows1252IndonesianHeaders",
			input:   mustEncode(t, householdCSV, charmap.Windows1252.NewEncoder()),
			want:    householdCSV,
			charset: encoding.Windows1252,
		},
		{
			name:    "UTF16LEWithBOM",
			input:   mustEncode(t, householdCSV, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()),
			want:    householdCSV,
			charset: encoding.UTF16LE,
			bom:     true,
		},
		{
			name:    "UTF16BEWithBOM",
			input:   mustEncode(t, householdCSV, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()),
			want:    householdCSV,
			charset: encoding.UTF16BE,
			bom:     true,
		},
		{
			name:    "Empty",
			input:   nil,
			want:    "",
			charset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := encoding.Detect(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(d)
			require.NoError(t, err)

			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.charset, d.Charset)
			assert.Equal(t, tt.bom, d.BOM)
		})
	}
}

func TestDetect_RuneSplitAtSniffBoundary(t *testing.T) {
	// 4095 ASCII bytes put the first byte of "é" last in the sniffed window.
	input := strings.Repeat("a", 4095) + "é;Rp 25.000\n"

	d, err := encoding.Detect(strings.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(d)
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, d.Charset)
	assert.Equal(t, input, string(got))
}
