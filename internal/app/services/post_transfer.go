package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

// MaxImportBytes caps the size of a post import file
const MaxImportBytes = 5 << 20

var importPolicy = filestorage.Policy{Extensions: []string{"json", "csv"}, MaxBytes: MaxImportBytes}

// StatsHeader is the header row of the post statistics CSV
var StatsHeader = []string{"id", "title", "author", "likes", "comments", "created_at"}

// Export returns every post in the import/export format
func (s *PostService) Export(ctx context.Context) ([]dto.PostExport, error) {
	posts, _, err := s.posts.List(ctx, models.PostFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostExport, 0, len(posts))
	for _, p := range posts {
		published := p.IsPublished
		out = append(out, dto.PostExport{
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			ImageURL:    p.ImageURL,
			ImagePath:   p.LocalImage(),
			Author:      p.AuthorName,
			IsPublished: &published,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// ExportStats writes one CSV row of counters per post
func (s *PostService) ExportStats(ctx context.Context, w io.Writer) error {
	stats, err := s.posts.Stats(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(StatsHeader); err != nil {
		return err
	}
	for _, st := range stats {
		record := []string{
			strconv.FormatInt(st.ID, 10),
			st.Title,
			st.AuthorName,
			strconv.FormatInt(st.LikesCount, 10),
			strconv.FormatInt(st.CommentsCount, 10),
			st.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import creates posts from a JSON or CSV file, attributed to the importing admin.
// Rows without content are skipped and reported.
func (s *PostService) Import(ctx context.Context, admin *models.User, up filestorage.Upload) (*dto.ImportResult, error) {
	if up == nil {
		return nil, apperrors.NewValidationError("file", "an import file is required")
	}
	ext, err := importPolicy.Check(up)
	if err != nil {
		return nil, err
	}

	f, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var rows []dto.PostExport
	if ext == "json" {
		rows, err = decodeJSONPosts(f)
	} else {
		rows, err = decodeCSVPosts(f)
	}
	if err != nil {
		return nil, apperrors.NewBadRequestError("could not read import file: " + err.Error())
	}

	result := &dto.ImportResult{}
	for i, row := range rows {
		content := strings.TrimSpace(row.Content)
		if content == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: content is required", i+1))
			continue
		}
		imageURL, err := checkImageURL(row.ImageURL)
		if err != nil {
			imageURL = ""
		}

		post := &models.Post{
			AuthorID:    admin.ID,
			Title:       strings.TrimSpace(row.Title),
			Content:     content,
			ImageURL:    imageURL,
			IsPublished: row.IsPublished == nil || *row.IsPublished,
			IsConfirmed: true,
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return result, err
		}
		result.Imported++
	}

	s.activity.Record(ctx, admin.ID, ActionPostImport, fmt.Sprintf("Imported %d posts", result.Imported))
	return result, nil
}

func decodeJSONPosts(r io.Reader) ([]dto.PostExport, error) {
	var rows []dto.PostExport
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// decodeCSVPosts reads a CSV whose header names the columns title, content,
// image_url and is_published in any order
func decodeCSVPosts(r io.Reader) ([]dto.PostExport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header row: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := cols["content"]; !ok {
		return nil, fmt.Errorf("header has no content column")
	}

	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var rows []dto.PostExport
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := dto.PostExport{
			Title:    field(rec, "title"),
			Content:  field(rec, "content"),
			ImageURL: field(rec, "image_url"),
		}
		if raw := strings.TrimSpace(field(rec, "is_published")); raw != "" {
			published, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid is_published value %q", raw)
			}
			row.IsPublished = &published
		}
		rows = append(rows, row)
	}
	return rows, nil
}
