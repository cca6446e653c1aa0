package zipfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	aeszip "github.com/alexmullins/zip"
	"github.com/klauspost/compress/zip"
	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/parser"
	"github.com/specialistvlad/parsegrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OperationUnzip extracts the archive into destiny.
const OperationUnzip = "unzip"

// encryptedFlag marks an encrypted entry in the general purpose bit flag.
const encryptedFlag = 0x1

// OptionPassword decrypts WinZip AES encrypted entries.
const OptionPassword = "password"

// Parser extracts ZIP archives.
type Parser struct {
	Origin  string
	Destiny string
	Options parser.Options
}

// New is the constructor bound by the ZipFileParser manifest.
func New(origin, destiny string, opts parser.Options) (any, error) {
	return &Parser{Origin: origin, Destiny: destiny, Options: opts}, nil
}

// AvailableOperations implements parser.OperationLister.
func (p *Parser) AvailableOperations() []string {
	return []string{OperationUnzip}
}

// Process extracts the archive.
func (p *Parser) Process(ctx context.Context) error {
	return p.Unzip(ctx, p.Options)
}

// Operation implements parser.OperationProvider.
func (p *Parser) Operation(name string) (parser.Operation, bool) {
	if name == OperationUnzip {
		return p.Unzip, true
	}
	return nil, false
}

// Unzip extracts every entry of the archive below destiny. With
// overwrite=false an existing file aborts the extraction. Encrypted entries
// need the password option.
func (p *Parser) Unzip(ctx context.Context, opts parser.Options) error {
	logger := ctxlog.FromContext(ctx).With("parser", "ZipFileParser", "origin", p.Origin)

	overwrite, ok := opts.Bool("overwrite")
	if !ok {
		overwrite = true
	}

	r, err := zip.OpenReader(p.Origin)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return fmt.Errorf("%s is not a valid ZIP file: %w", p.Origin, err)
		}
		return fmt.Errorf("failed to open ZIP file '%s': %w", p.Origin, err)
	}
	defer r.Close()

	password, _ := opts.String(OptionPassword)
	var encrypted []*aeszip.File
	for _, f := range r.File {
		if f.Flags&encryptedFlag == 0 {
			continue
		}
		if password == "" {
			return fmt.Errorf("entry '%s' is encrypted; set the '%s' option", f.Name, OptionPassword)
		}
		if encrypted == nil {
			ar, err := aeszip.OpenReader(p.Origin)
			if err != nil {
				return fmt.Errorf("failed to open encrypted ZIP file '%s': %w", p.Origin, err)
			}
			defer ar.Close()
			if len(ar.File) != len(r.File) {
				return fmt.Errorf("failed to read encrypted ZIP file '%s': entry count mismatch", p.Origin)
			}
			encrypted = ar.File
		}
	}

	if err := os.MkdirAll(p.Destiny, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", p.Destiny, err)
	}

	for i, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := entry{name: f.Name, dir: f.FileInfo().IsDir(), open: f.Open}
		if f.Flags&encryptedFlag != 0 {
			ef := encrypted[i]
			ef.SetPassword(password)
			e.open = ef.Open
		}
		if err := extract(e, p.Destiny, overwrite); err != nil {
			return err
		}
		logger.Debug("Extracted entry.", "entry", f.Name, "encrypted", f.Flags&encryptedFlag != 0)
	}

	logger.Info("Successfully extracted ZIP file", "destiny", p.Destiny, "entries", len(r.File))
	return nil
}

type entry struct {
	name string
	dir  bool
	open func() (io.ReadCloser, error)
}

// extract writes one entry below dir, refusing names that escape it.
func extract(f entry, dir string, overwrite bool) error {
	name := filepath.FromSlash(f.name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("entry '%s' escapes the output directory", f.name)
	}
	target := filepath.Join(dir, name)

	if f.dir || strings.HasSuffix(f.name, "/") {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := f.open()
	if err != nil {
		return fmt.Errorf("failed to open entry '%s': %w", f.name, err)
	}
	defer in.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to extract entry '%s': %w", f.name, err)
	}
	return out.Close()
}

// Register registers the constructor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterParser("NewZipFileParser", &registry.RegisteredParser{
		Type: reflect.TypeOf(&Parser{}),
		New:  New,
	})
}
