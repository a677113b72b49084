package handlers

import (
	"github.com/gofiber/fiber/v2"

	"campus-chat/internal/chat"
	"campus-chat/models"
)

// GroupHistoryHandler serves GET /api/history/group/:groupId.
func GroupHistoryHandler(history *chat.History) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groupID := c.Params("groupId")
		if groupID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "groupId required"})
		}

		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 0)

		result, err := history.Page(c.Context(), models.GroupRef(groupID), page, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch history"})
		}
		return c.JSON(result)
	}
}

// DirectHistoryHandler serves GET /api/history/direct/:userA/:userB. The
// pair is unordered; either participant may appear first. Only a
// participant of the conversation may read it.
func DirectHistoryHandler(history *chat.History) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userA := c.Params("userA")
		userB := c.Params("userB")
		if userA == "" || userB == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "both user ids required"})
		}

		authUserID := c.Locals("user_id").(string)
		if authUserID != userA && authUserID != userB {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a participant"})
		}

		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 0)

		result, err := history.Page(c.Context(), models.DirectRef(userA, userB), page, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch history"})
		}
		return c.JSON(result)
	}
}
