package dictionary

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadBytes = 5 << 20

type ReviewRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

type FlashcardHandler struct {
	service *FlashcardService
}

func NewFlashcardHandler(service *FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{service: service}
}

func cardError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, ErrCardNotFound):
		return handlers.NotFound(c, "Flashcard not found")
	case errors.Is(err, ErrDuplicateWord):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, ErrEmptyWord):
		return handlers.BadRequest(c, err.Error())
	}
	return handlers.InternalError(c, message, err)
}

func (h *FlashcardHandler) Create(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req CardInput
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	card, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return cardError(c, err, "failed to create flashcard")
	}
	return c.Status(fiber.StatusCreated).JSON(card)
}

func (h *FlashcardHandler) List(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	limit, offset := handlers.Pagination(c)
	cards, total, err := h.service.List(c.UserContext(), userID, c.Query("q"), limit, offset)
	if err != nil {
		return handlers.InternalError(c, "failed to list flashcards", err)
	}
	return c.JSON(dto.ListResponse{Data: cards, Total: total, Limit: limit, Offset: offset})
}

func (h *FlashcardHandler) Due(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	limit, _ := handlers.Pagination(c)
	cards, err := h.service.Due(c.UserContext(), userID, limit)
	if err != nil {
		return handlers.InternalError(c, "failed to list due flashcards", err)
	}
	return c.JSON(fiber.Map{"data": cards, "count": len(cards)})
}

func (h *FlashcardHandler) Get(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid flashcard ID")
	}

	card, err := h.service.Get(c.UserContext(), userID, id)
	if err != nil {
		return cardError(c, err, "failed to get flashcard")
	}
	return c.JSON(card)
}

func (h *FlashcardHandler) Update(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid flashcard ID")
	}

	var req CardInput
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	card, err := h.service.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return cardError(c, err, "failed to update flashcard")
	}
	return c.JSON(card)
}

func (h *FlashcardHandler) Delete(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid flashcard ID")
	}

	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return cardError(c, err, "failed to delete flashcard")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FlashcardHandler) Review(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid flashcard ID")
	}

	var req ReviewRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	card, err := h.service.Review(c.UserContext(), userID, id, *req.Correct)
	if err != nil {
		return cardError(c, err, "failed to review flashcard")
	}
	return c.JSON(card)
}

// Import takes a multipart upload in the "file" field.
func (h *FlashcardHandler) Import(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return handlers.BadRequest(c, "A file upload in the \"file\" field is required")
	}
	if header.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
			Error: true, Message: "File is too large",
		})
	}

	file, err := header.Open()
	if err != nil {
		return handlers.InternalError(c, "failed to open upload", err)
	}
	defer file.Close()

	result, err := h.service.Import(c.UserContext(), userID, header.Filename, file)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return handlers.BadRequest(c, err.Error())
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(result)
}
