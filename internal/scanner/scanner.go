// Package scanner finds //dendrite:: annotated types and methods in Go
// source, producing the metadata the generator emits registration code from.
package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/dendrite/internal/annotations"
	"github.com/toyz/dendrite/internal/errors"
	"github.com/toyz/dendrite/internal/models"
)

// GeneratedFileName is the registration file the generator writes per
// package; the scanner never reads it back.
const GeneratedFileName = "dendrite_gen.go"

// Scanner extracts subscriber metadata from a package directory
type Scanner struct {
	annotations *annotations.Parser
}

// New creates a Scanner
func New() *Scanner {
	return &Scanner{
		annotations: annotations.NewParser(),
	}
}

// ScanDirectory scans the Go files directly inside dir (no recursion) and
// returns the package's subscriber metadata. Test files, generated files and
// hidden files are skipped. Files are visited in name order so the result is
// deterministic; within a file, declaration order is preserved.
func (s *Scanner) ScanDirectory(dir string) (*models.PackageMetadata, error) {
	files, err := listSourceFiles(dir)
	if err != nil {
		return nil, err
	}

	metadata := &models.PackageMetadata{PackageDir: dir}
	if len(files) == 0 {
		return metadata, nil
	}

	fset := token.NewFileSet()
	parsed := make([]*ast.File, 0, len(files))
	for _, file := range files {
		astFile, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to parse %s", file)
		}
		if metadata.PackageName == "" {
			metadata.PackageName = astFile.Name.Name
		}
		parsed = append(parsed, astFile)
	}

	// Subscriber structs first so methods can be attached to them no matter
	// where in the package they are declared.
	index := make(map[string]int)
	for _, file := range parsed {
		if err := s.collectSubscribers(fset, file, metadata, index); err != nil {
			return nil, err
		}
	}
	for _, file := range parsed {
		if err := s.collectMembers(fset, file, metadata, index); err != nil {
			return nil, err
		}
	}

	return metadata, nil
}

// collectSubscribers records every //dendrite::subscriber annotated struct
func (s *Scanner) collectSubscribers(fset *token.FileSet, file *ast.File, metadata *models.PackageMetadata, index map[string]int) error {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}
			parsed, err := s.parseDoc(fset, doc)
			if err != nil {
				return err
			}
			if parsed == nil {
				continue
			}

			loc := location(fset, typeSpec.Pos())
			if parsed.Kind != annotations.SubscriberKind {
				return errors.Newf(errors.ValidationErrorCode,
					"annotation %s cannot be attached to type %s", parsed.Kind, typeSpec.Name.Name).
					WithLocation(loc).
					WithSuggestion("use //dendrite::subscriber on types and //dendrite::subscribe on methods")
			}
			if _, ok := typeSpec.Type.(*ast.StructType); !ok {
				return errors.Newf(errors.ValidationErrorCode,
					"subscriber %s must be a struct type", typeSpec.Name.Name).WithLocation(loc)
			}

			index[typeSpec.Name.Name] = len(metadata.Subscribers)
			metadata.Subscribers = append(metadata.Subscribers, models.SubscriberMetadata{
				StructName: typeSpec.Name.Name,
				FileName:   loc.File,
				Line:       loc.Line,
			})
		}
	}
	return nil
}

// collectMembers records every //dendrite::subscribe annotated method and
// validates that it has the shape discovery will accept.
func (s *Scanner) collectMembers(fset *token.FileSet, file *ast.File, metadata *models.PackageMetadata, index map[string]int) error {
	for _, decl := range file.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		parsed, err := s.parseDoc(fset, funcDecl.Doc)
		if err != nil {
			return err
		}
		if parsed == nil {
			continue
		}

		name := funcDecl.Name.Name
		loc := location(fset, funcDecl.Pos())
		if parsed.Kind != annotations.SubscribeKind {
			return errors.Newf(errors.ValidationErrorCode,
				"annotation %s cannot be attached to function %s", parsed.Kind, name).
				WithLocation(loc).
				WithSuggestion("use //dendrite::subscribe on methods")
		}
		if funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
			return errors.Newf(errors.ValidationErrorCode,
				"subscribe annotation on %s: service members must be methods, not functions", name).WithLocation(loc)
		}

		recvName := receiverTypeName(funcDecl.Recv.List[0].Type)
		pos, known := index[recvName]
		if !known {
			return errors.Newf(errors.ValidationErrorCode,
				"method %s.%s carries a subscribe annotation but %s is not a subscriber", recvName, name, recvName).
				WithLocation(loc).
				WithSuggestion("annotate type " + recvName + " with //dendrite::subscriber")
		}
		if !ast.IsExported(name) {
			return errors.Newf(errors.ValidationErrorCode,
				"service method %s.%s must be exported", recvName, name).WithLocation(loc)
		}
		if funcDecl.Type.Params != nil && len(funcDecl.Type.Params.List) > 0 {
			return errors.Newf(errors.ValidationErrorCode,
				"service method %s.%s must not take parameters", recvName, name).WithLocation(loc)
		}
		if funcDecl.Type.Results == nil || funcDecl.Type.Results.NumFields() != 1 {
			return errors.Newf(errors.ValidationErrorCode,
				"service method %s.%s must return exactly one value", recvName, name).WithLocation(loc)
		}

		metadata.Subscribers[pos].Members = append(metadata.Subscribers[pos].Members, models.MemberMetadata{
			Name:       name,
			Key:        parsed.Key,
			Type:       parsed.Type,
			Nullable:   parsed.Nullable,
			Attributes: parsed.Attributes,
			FileName:   loc.File,
			Line:       loc.Line,
		})
	}
	return nil
}

// parseDoc finds the dendrite annotation in a doc comment, if any. More than
// one annotation on a single declaration is an error.
func (s *Scanner) parseDoc(fset *token.FileSet, doc *ast.CommentGroup) (*annotations.Parsed, error) {
	if doc == nil {
		return nil, nil
	}
	var result *annotations.Parsed
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		parsed, err := s.annotations.Parse(comment.Text, location(fset, comment.Pos()))
		if err != nil {
			return nil, err
		}
		if result != nil {
			return nil, errors.New(errors.ValidationErrorCode, "multiple dendrite annotations on one declaration").
				WithLocation(location(fset, comment.Pos()))
		}
		result = parsed
	}
	return result, nil
}

// receiverTypeName resolves a method receiver expression to its base type
// name, stripping pointers and generic type parameters.
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	default:
		return ""
	}
}

func location(fset *token.FileSet, pos token.Pos) errors.SourceLocation {
	position := fset.Position(pos)
	return errors.SourceLocation{
		File:   position.Filename,
		Line:   position.Line,
		Column: position.Column,
	}
}

// listSourceFiles returns the scannable Go files in dir, sorted by name
func listSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to read directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") || name == GeneratedFileName {
			continue
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
