package xmlcsv

import (
	"context"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"github.com/specialistvlad/parsegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OperationXMLToCSV converts the document into a CSV file in destiny.
const OperationXMLToCSV = "xml_to_csv"

// ErrNoData is returned for documents whose root has no child elements.
var ErrNoData = errors.New("XML file has no data elements")

// Parser converts flat XML record lists to CSV.
type Parser struct {
	Origin  string
	Destiny string
	Options parser.Options
}

// New is the constructor bound by the XmlToCsvParser manifest.
func New(origin, destiny string, opts parser.Options) (any, error) {
	return &Parser{Origin: origin, Destiny: destiny, Options: opts}, nil
}

// AvailableOperations implements parser.OperationLister.
func (p *Parser) AvailableOperations() []string {
	return []string{OperationXMLToCSV}
}

// Process converts the document.
func (p *Parser) Process(ctx context.Context) error {
	return p.XMLToCSV(ctx, p.Options)
}

// Operation implements parser.OperationProvider.
func (p *Parser) Operation(name string) (parser.Operation, bool) {
	if name == OperationXMLToCSV {
		return p.XMLToCSV, true
	}
	return nil, false
}

type node struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func (n node) value() string {
	if len(n.Nodes) > 0 {
		return strings.TrimSpace(n.Text)
	}
	return n.Text
}

// XMLToCSV writes <destiny>/<origin base>.csv. The header is taken from the
// child tags of the first record; each record of the root becomes one row.
func (p *Parser) XMLToCSV(ctx context.Context, opts parser.Options) error {
	logger := ctxlog.FromContext(ctx).With("parser", "XmlToCsvParser", "origin", p.Origin)

	delimiter, err := delimiterOption(opts)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(p.Origin)
	if err != nil {
		return fmt.Errorf("failed to read XML file '%s': %w", p.Origin, err)
	}
	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("%s is not a valid XML file: %w", p.Origin, err)
	}
	if len(root.Nodes) == 0 {
		return fmt.Errorf("%s: %w", p.Origin, ErrNoData)
	}

	if err := os.MkdirAll(p.Destiny, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", p.Destiny, err)
	}
	base := filepath.Base(p.Origin)
	target := filepath.Join(p.Destiny, strings.TrimSuffix(base, filepath.Ext(base))+".csv")

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", target, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	w.Comma = delimiter

	header := make([]string, 0, len(root.Nodes[0].Nodes))
	for _, field := range root.Nodes[0].Nodes {
		header = append(header, field.XMLName.Local)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, record := range root.Nodes {
		row := make([]string, 0, len(record.Nodes))
		for _, field := range record.Nodes {
			row = append(row, field.value())
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write '%s': %w", target, err)
	}

	logger.Info("Successfully converted XML to CSV", "destiny", target, "rows", len(root.Nodes))
	return out.Close()
}

func delimiterOption(opts parser.Options) (rune, error) {
	s, ok := opts.String("delimiter")
	if !ok || s == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// Register registers the constructor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterParser("NewXmlToCsvParser", &registry.RegisteredParser{
		Type: reflect.TypeOf(&Parser{}),
		New:  New,
	})
}
