package dac

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// dataLexer tokenizes bench data files:
//
//	# code: readings in volts
//	0: 0.0012, 0.0009
//	1: 0.0031 0.0030
var dataLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Real", Pattern: `[-+]?(\d+\.\d*|\.\d+)([eE][-+]?\d+)?|[-+]?\d+[eE][-+]?\d+`},
	{Name: "Integer", Pattern: `[-+]?\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
})

type dataFile struct {
	Rows []*dataRow `( EOL | @@ )*`
}

type dataRow struct {
	Pos    lexer.Position
	Code   int       `@Integer Colon`
	Values []float64 `( @( Real | Integer ) Comma? )* EOL`
}

var dataParser = participle.MustBuild[dataFile](
	participle.Lexer(dataLexer),
	participle.Elide("Comment", "Whitespace"),
)

// ParseData reads a data file. Rows repeating a code add to its readings.
func ParseData(r io.Reader) (Data, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dac: read: %w", err)
	}
	// Every row ends in EOL, including the last.
	if len(src) == 0 || src[len(src)-1] != '\n' {
		src = append(src, '\n')
	}
	file, err := dataParser.ParseBytes("", src)
	if err != nil {
		return nil, fmt.Errorf("dac: parse: %w", err)
	}

	d := make(Data)
	for _, row := range file.Rows {
		if row.Code < 0 {
			return nil, fmt.Errorf("dac: %s: negative code %d", row.Pos, row.Code)
		}
		if len(row.Values) == 0 {
			return nil, fmt.Errorf("dac: %s: code %d has no readings", row.Pos, row.Code)
		}
		d[row.Code] = append(d[row.Code], row.Values...)
	}
	return d, nil
}

// ParseFile reads a data file from disk.
func ParseFile(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dac: %w", err)
	}
	defer f.Close()
	return ParseData(f)
}
