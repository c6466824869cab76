package httpapi

import (
	"encoding/json"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/server/models"
)

// storeUpload writes the uploaded image to blob storage and returns its
// reference. Storage is best effort: a failure is logged and the
// classification proceeds with no stored artifact.
func (s *Server) storeUpload(c *fiber.Ctx, fh *multipart.FileHeader) *string {
	if s.storage == nil {
		return nil
	}

	f, err := fh.Open()
	if err != nil {
		s.logger.Warn(c.UserContext(), "failed to open upload", "error", err)
		return nil
	}
	defer f.Close()

	key, err := s.storage.Save(c.UserContext(), f, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		s.logger.Warn(c.UserContext(), "failed to store upload", "error", err)
		return nil
	}

	return &key
}

func (s *Server) handleClassify(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No image uploaded")
	}

	var userID *string
	if profile := profileFromLocals(c); profile != nil {
		userID = &profile.ID
	}

	imagePath := s.storeUpload(c, fh)

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No image uploaded")
	}
	defer f.Close()

	result, err := s.classifier.Classify(c.UserContext(), fh.Filename, f)
	if err != nil {
		s.recorder.Persist(c.UserContext(), userID, imagePath, nil, models.StatusFailed)
		s.logger.Error(c.UserContext(), "classification failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "ML API failed")
	}

	record := s.recorder.Persist(c.UserContext(), userID, imagePath, result, models.StatusCompleted)

	return c.JSON(fiber.Map{
		"model_output":      result,
		"classification_id": record.ID,
	})
}

func (s *Server) handleMyClassifications(c *fiber.Ctx) error {
	profile := profileFromLocals(c)

	list, err := s.store.ListClassificationsByUser(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (s *Server) handleListClassifications(c *fiber.Ctx) error {
	profile := profileFromLocals(c)

	list, err := s.store.ListClassificationsByUser(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// loadOwnedClassification fetches the row and enforces the owner-or-admin
// rule shared by the single-item routes.
func (s *Server) loadOwnedClassification(c *fiber.Ctx) (*models.Classification, error) {
	item, err := s.store.GetClassification(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Not found")
		}
		return nil, err
	}

	profile := profileFromLocals(c)
	owner := item.UserID != nil && *item.UserID == profile.ID
	if !owner && profile.Role != models.RoleAdmin {
		return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}

	return item, nil
}

func (s *Server) handleGetClassification(c *fiber.Ctx) error {
	item, err := s.loadOwnedClassification(c)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

type updateClassificationRequest struct {
	Result json.RawMessage `json:"result"`
	Status *string         `json:"status"`
}

func (s *Server) handleUpdateClassification(c *fiber.Ctx) error {
	item, err := s.loadOwnedClassification(c)
	if err != nil {
		return err
	}

	var body updateClassificationRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	status := ""
	if body.Status != nil {
		status = *body.Status
	}

	if err := s.store.UpdateClassification(c.UserContext(), item.ID, body.Result, status); err != nil {
		return err
	}

	updated, err := s.store.GetClassification(c.UserContext(), item.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

func (s *Server) handleDeleteClassification(c *fiber.Ctx) error {
	item, err := s.loadOwnedClassification(c)
	if err != nil {
		return err
	}

	ok, err := s.store.DeleteClassification(c.UserContext(), item.ID)
	if err != nil {
		return err
	}
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
