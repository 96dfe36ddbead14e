package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/controller"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/directory"
)

func (s *Server) listConversations(c *fiber.Ctx) error {
	rt, err := s.runtimeFor(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok", "data": rt.ctrl.ListConversations()})
}

func (s *Server) getMessages(c *fiber.Ctx) error {
	rt, err := s.runtimeFor(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	msgs, err := rt.ctrl.Messages(c.Context(), c.Params("key"))
	if err != nil {
		return s.coreError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": msgs})
}

func (s *Server) selectConversation(c *fiber.Ctx) error {
	rt, err := s.runtimeFor(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	conv, err := rt.ctrl.Select(c.Context(), c.Params("key"))
	if err != nil {
		return s.coreError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": conv})
}

func (s *Server) deselect(c *fiber.Ctx) error {
	rt, err := s.runtimeFor(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	rt.ctrl.Deselect()
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) startNew(c *fiber.Ctx) error {
	var req struct {
		CounterpartyID string `json:"counterparty_id"`
		CommunityID    string `json:"community_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.CounterpartyID == "" || req.CommunityID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "counterparty_id and community_id required"})
	}
	rt, err := s.runtimeFor(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	conv, err := rt.ctrl.StartNew(c.Context(), req.CounterpartyID, req.CommunityID)
	if err != nil {
		return s.coreError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"status": "ok", "data": conv})
}

func (s *Server) send(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	rt, err := s.runtimeFor(c)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	msg, err := rt.ctrl.Send(c.Context(), c.Params("key"), req.Content)
	if err != nil {
		return s.coreError(c, err)
	}
	if msg == nil {
		// empty after trimming, nothing sent
		return c.JSON(fiber.Map{"status": "ok"})
	}
	return c.Status(201).JSON(fiber.Map{"status": "ok", "data": msg})
}

func (s *Server) endSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	s.mu.Lock()
	rt, ok := s.runtimes[userID]
	if ok {
		delete(s.runtimes, userID)
	}
	s.mu.Unlock()
	if ok {
		rt.ctrl.Teardown()
	}
	s.hub.CloseUser(userID)
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) coreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, controller.ErrUnknownConversation), errors.Is(err, directory.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, controller.ErrNotMember):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, controller.ErrNoSelection):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}
