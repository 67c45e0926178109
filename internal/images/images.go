package images

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"docchat/internal/models"
	"docchat/internal/parser"
)

// ErrImageDecode marks a single embedded image that could not be decoded.
// It is per-image and never aborts extraction of the remaining images.
var ErrImageDecode = errors.New("image decode error")

// Extract pulls all embedded raster images out of a PDF, decoded into
// canonical pixel buffers and ordered by (page, in-page index), 1-based.
// Formats without embedded images yield an empty result.
func Extract(filePath string) ([]models.ExtractedImage, error) {
	if !isPDF(filePath) {
		return nil, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", parser.ErrDocumentRead, err)
	}
	defer f.Close()

	pageImages, err := api.ExtractImagesRaw(f, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", parser.ErrDocumentRead, err)
	}

	raws := flatten(pageImages)

	var out []models.ExtractedImage
	lastPage, indexOnPage := 0, 0
	for _, raw := range raws {
		if raw.PageNr != lastPage {
			lastPage = raw.PageNr
			indexOnPage = 0
		}
		indexOnPage++

		img, err := decode(raw)
		if err != nil {
			log.Warn().Err(err).
				Int("page", raw.PageNr).
				Int("index", indexOnPage).
				Str("name", raw.Name).
				Msg("Skipping undecodable embedded image")
			continue
		}
		out = append(out, models.ExtractedImage{
			PageNumber:  raw.PageNr,
			IndexOnPage: indexOnPage,
			Pixels:      img,
		})
	}
	return out, nil
}

// flatten collapses pdfcpu's per-page maps into one deterministic order:
// ascending page number, then ascending object number within the page
func flatten(pageImages []map[int]pdfmodel.Image) []pdfmodel.Image {
	var raws []pdfmodel.Image
	for _, byObj := range pageImages {
		for _, img := range byObj {
			if img.Thumb {
				continue
			}
			raws = append(raws, img)
		}
	}
	sort.SliceStable(raws, func(i, j int) bool {
		if raws[i].PageNr != raws[j].PageNr {
			return raws[i].PageNr < raws[j].PageNr
		}
		return raws[i].ObjNr < raws[j].ObjNr
	})
	return raws
}

func decode(raw pdfmodel.Image) (image.Image, error) {
	if raw.Reader == nil {
		return nil, fmt.Errorf("%w: empty image stream", ErrImageDecode)
	}
	img, _, err := image.Decode(raw.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, nil
}

func isPDF(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".pdf")
}
