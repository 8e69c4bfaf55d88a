package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"casedocs/internal/service"
)

// downloadURLExpiry is how long a presigned attachment link stays valid.
const downloadURLExpiry = 15 * time.Minute

// receivedDateFormats are accepted on input. The first is what an HTML
// datetime-local control submits; RFC3339 covers API clients.
var receivedDateFormats = []string{
	"2006-01-02T15:04",
	time.RFC3339,
}

func parseReceivedDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range receivedDateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// documentRequest is the JSON body of an update call; create uses the same
// fields as multipart form values so a file can ride along.
type documentRequest struct {
	ComplainantName string `json:"complainant_name" form:"complainant_name"`
	Subject         string `json:"subject" form:"subject"`
	Source          string `json:"source" form:"source"`
	ReceivedDate    string `json:"received_date" form:"received_date"`
	Notes           string `json:"notes" form:"notes"`
}

func (r documentRequest) toInput() (service.DocumentInput, error) {
	if r.ReceivedDate == "" {
		return service.DocumentInput{}, errors.New("received_date is required")
	}
	received, err := parseReceivedDate(r.ReceivedDate)
	if err != nil {
		return service.DocumentInput{}, err
	}
	return service.DocumentInput{
		ComplainantName: r.ComplainantName,
		Subject:         r.Subject,
		Source:          r.Source,
		ReceivedDate:    received,
		Notes:           r.Notes,
	}, nil
}

func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListDocuments returns the snapshot filtered by the optional q (free-text
// search) and source (exact match, "all" disables) query parameters.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.List(c.UserContext(), service.ListQuery{
			Search: c.Query("q"),
			Source: c.Query("source"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateDocument files a new document from a multipart form: the metadata
// fields plus an optional "file" part.
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req documentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		in, err := req.toInput()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "received_date is missing or malformed")
		}

		var upload *service.FileUpload
		if fh, err := c.FormFile("file"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			upload = &service.FileUpload{
				Reader:      f,
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			}
		}

		doc, err := docSvc.Create(c.UserContext(), in, upload)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one document by ID.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocument overwrites a document's metadata. Attachment fields are not
// part of the edit surface and stay untouched.
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req documentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		in, err := req.toInput()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "received_date is missing or malformed")
		}
		if err := docSvc.Update(c.UserContext(), id, in); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteDocument removes a document and its attachment.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument redirects to a short-lived URL for the attachment.
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := docSvc.DownloadURL(c.UserContext(), id, downloadURLExpiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(u, fiber.StatusFound)
	}
}

// ListSources returns the source filter catalogue ("all" first, then the
// distinct sources in first-seen order).
func ListSources(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sources, err := docSvc.Sources(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"sources": sources})
	}
}
