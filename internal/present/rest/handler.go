package rest

import (
	"errors"
	"html"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/discovery"
	"github.com/stellarsnaps/stellarsnaps-go/internal/config"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
	"github.com/stellarsnaps/stellarsnaps-go/internal/present/rest/presenter"
	"github.com/stellarsnaps/stellarsnaps-go/internal/service"
	"github.com/stellarsnaps/stellarsnaps-go/internal/usecase"
	"github.com/stellarsnaps/stellarsnaps-go/sep7"
)

type Handler struct {
	site     config.Site
	snap     *usecase.SnapUsecase
	registry *usecase.RegistryUsecase
	buildTx  *usecase.BuildTxUsecase
	resolve  *usecase.ResolveUsecase
	events   *service.EventService
}

func NewHandler(
	site config.Site,
	snap *usecase.SnapUsecase,
	registry *usecase.RegistryUsecase,
	buildTx *usecase.BuildTxUsecase,
	resolve *usecase.ResolveUsecase,
	events *service.EventService,
) *Handler {
	return &Handler{
		site:     site,
		snap:     snap,
		registry: registry,
		buildTx:  buildTx,
		resolve:  resolve,
		events:   events,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET(snaps.WellKnownPath, h.handleWellKnown)
	e.GET("/api/registry", h.handleRegistry)
	e.GET("/api/resolve", h.handleResolve)
	e.POST("/api/build-tx", h.handleBuildTx)
	e.POST("/api/snaps", h.handleCreateSnap)
	e.GET("/api/snaps", h.handleListSnaps)
	e.GET("/api/snap/:id", h.handleGetSnap)
	e.DELETE("/api/snap/:id", h.handleDeleteSnap)
	e.GET("/api/snap/:id/uri", h.handleSnapURI)
	e.GET("/s/:id", h.handleSnapPage)
	e.GET("/api/metadata/:id", h.handleMetadata)
	e.GET("/events", h.handleEvents)
}

// handleWellKnown serves the service's own discovery file so the pipeline
// treats it like any other snap-hosting domain.
func (h *Handler) handleWellKnown(c echo.Context) error {
	file, err := discovery.NewFile(h.site.Name, h.site.Description, h.site.Icon, []snaps.DiscoveryRule{
		{PathPattern: "/s/*", APIPath: "/api/metadata/$1"},
		{PathPattern: "/pay/*", APIPath: "/api/metadata/$1"},
	})
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, file)
}

func (h *Handler) handleRegistry(c echo.Context) error {
	ctx := c.Request().Context()

	if domainName := c.QueryParam("domain"); domainName != "" {
		entry, err := h.registry.Get(ctx, domainName)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return presenter.NotFound(c, "domain not registered")
			}
			if errors.Is(err, domain.ValidationError{}) {
				return presenter.BadRequest(c, err)
			}
			return presenter.InternalError(c, err)
		}
		return presenter.OK(c, entry)
	}

	listing, err := h.registry.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, listing)
}

func (h *Handler) handleResolve(c echo.Context) error {
	ctx := c.Request().Context()

	rawurl := c.QueryParam("url")
	if rawurl == "" {
		return presenter.BadRequestMessage(c, "url parameter is required")
	}

	resolved, err := h.resolve.Resolve(ctx, rawurl)
	if err != nil {
		if errors.Is(err, domain.ValidationError{}) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, resolved)
}

func (h *Handler) handleBuildTx(c echo.Context) error {
	ctx := c.Request().Context()

	var req snaps.BuildTxRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	resp, err := h.buildTx.Build(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ValidationError{}) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, resp)
}

func (h *Handler) handleCreateSnap(c echo.Context) error {
	ctx := c.Request().Context()

	var snap snaps.Snap
	if err := c.Bind(&snap); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.snap.Create(ctx, snap)
	if err != nil {
		if errors.Is(err, domain.ValidationError{}) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, created)
}

func (h *Handler) handleListSnaps(c echo.Context) error {
	ctx := c.Request().Context()

	owner := c.QueryParam("owner")
	if owner == "" {
		return presenter.BadRequestMessage(c, "owner parameter is required")
	}

	list, err := h.snap.List(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ValidationError{}) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, list)
}

func (h *Handler) handleGetSnap(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.snap.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "snap not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, snap)
}

func (h *Handler) handleDeleteSnap(c echo.Context) error {
	ctx := c.Request().Context()

	owner := c.QueryParam("owner")
	if owner == "" {
		return presenter.BadRequestMessage(c, "owner parameter is required")
	}

	err := h.snap.Delete(ctx, c.Param("id"), owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "snap not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return presenter.Forbidden(c, "only the creator can delete a snap")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

// handleSnapPage serves the share page for a snap: an HTML shell carrying
// OpenGraph and Twitter tags so pasted links unfurl in feeds. The page path
// also matches the service's own discovery rules.
func (h *Handler) handleSnapPage(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.snap.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "snap not found")
		}
		return presenter.InternalError(c, err)
	}

	info := snaps.PageInfo{
		Title:     snap.Title,
		AssetCode: snap.AssetCode,
		URL:       "https://" + h.site.FQDN + "/s/" + snap.ID,
		SiteName:  h.site.Name,
	}
	if snap.Description != nil {
		info.Description = *snap.Description
	}
	if snap.ImageURL != nil {
		info.ImageURL = *snap.ImageURL
	}
	if snap.Amount != nil {
		info.Amount = *snap.Amount
	}

	tags := snaps.GenerateMetaTags(info)
	page := "<!doctype html>\n<html>\n<head>\n" + tags.HTML() +
		"\n</head>\n<body>\n<h1>" + html.EscapeString(snap.Title) + "</h1>\n</body>\n</html>\n"
	return c.HTML(http.StatusOK, page)
}

// handleSnapURI renders a snap as a web+stellar:pay URI for wallets that
// speak SEP-0007 directly.
func (h *Handler) handleSnapURI(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.snap.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "snap not found")
		}
		return presenter.InternalError(c, err)
	}

	opts := sep7.PaymentOptions{
		Destination: snap.Destination,
		AssetCode:   snap.AssetCode,
		MemoType:    snaps.MemoType(snap.MemoType),
		Network:     snaps.Network(snap.Network),
		Message:     snap.Title,
	}
	if snap.Amount != nil {
		opts.Amount = *snap.Amount
	}
	if snap.AssetIssuer != nil {
		opts.AssetIssuer = *snap.AssetIssuer
	}
	if snap.Memo != nil {
		opts.Memo = *snap.Memo
	}

	result, err := sep7.CreatePayment(opts)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"uri": result.URI})
}

// handleMetadata serves the rendering view of a snap: plain strings, no
// pointers, exactly what the pipeline's metadata fetch expects.
func (h *Handler) handleMetadata(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.snap.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "snap not found")
		}
		return presenter.InternalError(c, err)
	}

	meta := snaps.SnapMetadata{
		ID:          snap.ID,
		Title:       snap.Title,
		Destination: snap.Destination,
		AssetCode:   snap.AssetCode,
		MemoType:    snap.MemoType,
		Network:     snap.Network,
	}
	if snap.Description != nil {
		meta.Description = *snap.Description
	}
	if snap.ImageURL != nil {
		meta.ImageURL = *snap.ImageURL
	}
	if snap.Amount != nil {
		meta.Amount = *snap.Amount
	}
	if snap.AssetIssuer != nil {
		meta.AssetIssuer = *snap.AssetIssuer
	}
	if snap.Memo != nil {
		meta.Memo = *snap.Memo
	}
	return presenter.OK(c, meta)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleEvents streams snap lifecycle events over a websocket. The reader
// goroutine only watches for the peer going away; heartbeats are ignored.
func (h *Handler) handleEvents(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	events, err := h.events.Subscribe(ctx, usecase.EventChannel)
	if err != nil {
		slog.ErrorContext(
			ctx, "Failed to subscribe to events",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return nil
	}

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
