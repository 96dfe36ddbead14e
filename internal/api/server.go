package api

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/auth"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/config"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/controller"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/directory"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/dispatch"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/feed"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/repository"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/session"
)

// Deps are the external collaborators the messaging core is built on.
type Deps struct {
	Store    repository.MessageStore
	Dir      directory.Resolver
	Feed     feed.Feed
	Pub      feed.Publisher
	Export   controller.Exporter
	Validate *auth.Validator
}

// runtime is one user's live messaging core: session context, dispatcher with
// its feed subscriptions, and the view controller.
type runtime struct {
	sess *session.Session
	disp *dispatch.Dispatcher
	ctrl *controller.Controller
}

type Server struct {
	cfg  *config.Config
	deps Deps
	log  *zap.SugaredLogger
	hub  *Hub

	mu       sync.Mutex
	runtimes map[string]*runtime
}

func NewServer(cfg *config.Config, deps Deps, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		hub:      NewHub(),
		runtimes: map[string]*runtime{},
	}
}

// App builds the fiber application with all routes mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New()
	app.Use(fiberlogger.New())

	api := app.Group("/v1")
	api.Use(s.authMiddleware)

	api.Get("/conversations", s.listConversations)
	api.Post("/conversations", s.startNew)
	api.Get("/conversations/:key/messages", s.getMessages)
	api.Post("/conversations/:key/select", s.selectConversation)
	api.Post("/conversations/:key/deselect", s.deselect)
	api.Post("/conversations/:key/messages", s.send)
	api.Delete("/session", s.endSession)
	api.Get("/ws", s.websocket())

	return app
}

func (s *Server) authMiddleware(c *fiber.Ctx) error {
	hdr := c.Get("Authorization")
	if hdr == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing auth"})
	}
	const pref = "Bearer "
	if len(hdr) <= len(pref) || hdr[:len(pref)] != pref {
		return c.Status(401).JSON(fiber.Map{"error": "invalid auth"})
	}
	sub, err := s.deps.Validate.Validate(hdr[len(pref):])
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	c.Locals("user_id", sub)
	return c.Next()
}

// runtimeFor returns the user's live core, creating it on first use:
// membership discovery, feed subscriptions, initial aggregate.
func (s *Server) runtimeFor(c *fiber.Ctx) (*runtime, error) {
	userID := c.Locals("user_id").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.runtimes[userID]; ok {
		return rt, nil
	}

	ctx := c.Context()
	memberships, err := s.deps.Dir.Memberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess := session.New(userID, memberships)
	disp := dispatch.New(sess, s.deps.Store, s.deps.Dir, s.deps.Feed, s.log)
	disp.OnRefresh(func() {
		s.hub.Notify(userID, fiber.Map{"type": "refresh"})
	})
	if err := disp.Start(ctx); err != nil {
		return nil, err
	}
	ctrl := controller.New(sess, s.deps.Store, s.deps.Dir, disp, s.deps.Pub, s.deps.Export, s.log)

	rt := &runtime{sess: sess, disp: disp, ctrl: ctrl}
	s.runtimes[userID] = rt
	return rt, nil
}

// CloseSessions tears down every live runtime; used on shutdown.
func (s *Server) CloseSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.runtimes {
		rt.ctrl.Teardown()
		delete(s.runtimes, id)
	}
}
