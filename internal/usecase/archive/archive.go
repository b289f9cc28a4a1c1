package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"goban/internal/bootstrap"
	"goban/internal/domain/archive"
	"goban/internal/domain/sgf"
	errs "goban/internal/errors"
)

type GameStore interface {
	GetGame(ctx context.Context, id string) (archive.Game, error)
	ListGames(ctx context.Context, pageNum int) (*archive.Page, error)
	ImportDirectory(ctx context.Context, pathToGames string) (*archive.ImportReport, error)
}

type ArchiveUseCase struct {
	cfg   *bootstrap.Config
	store GameStore
}

func NewArchiveUseCase(cfg *bootstrap.Config, store GameStore) *ArchiveUseCase {
	return &ArchiveUseCase{cfg: cfg, store: store}
}

func (a *ArchiveUseCase) ListGames(ctx context.Context, pageNum int) (*archive.Page, error) {
	return a.store.ListGames(ctx, pageNum)
}

func (a *ArchiveUseCase) GetGame(ctx context.Context, id string) (archive.Game, error) {
	return a.store.GetGame(ctx, id)
}

// Import reads the configured import directory, or path when it lies inside
// it. Relative paths are taken from the import directory.
func (a *ArchiveUseCase) Import(ctx context.Context, path string) (*archive.ImportReport, error) {
	if a.cfg.ArchiveImportPath == "" {
		return nil, errs.ErrImportDisabled
	}
	dir, err := importDir(a.cfg.ArchiveImportPath, path)
	if err != nil {
		return nil, err
	}
	return a.store.ImportDirectory(ctx, dir)
}

func importDir(root, path string) (string, error) {
	root = filepath.Clean(root)
	if path == "" {
		return root, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errs.ErrImportPathOutside, path)
	}
	return path, nil
}

const movesPerRow = 6

// RenderSheet writes a printable A4 game sheet: the root properties followed
// by the numbered move list in board notation.
func (a *ArchiveUseCase) RenderSheet(ctx context.Context, id string, w io.Writer) error {
	g, err := a.store.GetGame(ctx, id)
	if err != nil {
		return err
	}

	rec, err := sgf.Parse(g.Transcript)
	if err != nil {
		return fmt.Errorf("archived game %s: %w", id, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s vs %s", g.PlayerBlack, g.PlayerWhite), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("%s (B) vs %s (W)", orDash(g.PlayerBlack), orDash(g.PlayerWhite)))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Board size", strconv.Itoa(rec.BoardSize())},
		{"Komi", strconv.FormatFloat(rec.Komi(), 'f', -1, 64)},
		{"Result", orDash(g.Result)},
		{"Moves", strconv.Itoa(len(rec.Moves))},
		{"Archived", g.CreatedAt.Format("2006-01-02 15:04")},
	}
	for _, row := range rows {
		pdf.CellFormat(40, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Courier", "", 10)
	for i, m := range rec.Moves {
		coord, err := sgf.HumanPoint(m.Point, rec.BoardSize())
		if err != nil {
			coord = sgf.EncodePoint(m.Point)
		}
		lineBreak := 0
		if (i+1)%movesPerRow == 0 {
			lineBreak = 1
		}
		pdf.CellFormat(30, 6, fmt.Sprintf("%3d %s %s", i+1, m.Color, coord), "", lineBreak, "L", false, 0, "")
	}

	if len(g.Advisories) > 0 {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 9)
		for _, note := range g.Advisories {
			pdf.MultiCell(0, 5, note, "", "L", false)
		}
	}

	return pdf.Output(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
