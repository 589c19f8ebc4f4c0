package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vortitron/wxicons"
)

// NewApp creates the preview application with its middleware and routes.
func NewApp(store *Store, packer wxicons.Packer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "wxpreview",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wxpreview",
		})
	})

	RegisterRoutes(app, store, packer)
	return app
}

// iconResponse describes a resolved icon.
type iconResponse struct {
	ID           string   `json:"id"`
	Key          string   `json:"key"`
	Condition    string   `json:"condition"`
	Variant      string   `json:"variant"`
	CycleMs      int      `json:"cycleMs"`
	FrameDelayMs int      `json:"frameDelayMs"`
	Frames       []string `json:"frames"`
}

func newIconResponse(r *wxicons.AssetRecord) iconResponse {
	res := iconResponse{
		ID:           r.ID,
		Key:          r.Key(),
		Condition:    r.Condition,
		Variant:      string(r.Variant),
		CycleMs:      r.CycleMs,
		FrameDelayMs: r.FrameDelayMs,
		Frames:       make([]string, len(r.Frames)),
	}
	for i := range r.Frames {
		res.Frames[i] = fmt.Sprintf("/api/v1/icons/%s/frames/%d", r.ID, i)
	}
	return res
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, store *Store, packer wxicons.Packer) {
	v1 := app.Group("/api/v1")

	v1.Get("/manifest", func(c *fiber.Ctx) error {
		m, err := store.Manifest()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(m)
	})

	v1.Get("/resolve", func(c *fiber.Ctx) error {
		table, _, err := store.Table()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}

		condition := c.Query("condition")
		if text := c.Query("text"); condition == "" && text != "" {
			condition = wxicons.DetectCondition(text)
		}
		if condition == "" {
			return fiber.NewError(fiber.StatusBadRequest, "condition or text query parameter is required")
		}

		isDay := wxicons.IsDaytime(time.Now().Hour())
		if d := c.Query("day"); d != "" {
			isDay, err = strconv.ParseBool(d)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "day must be a boolean")
			}
		}

		r := table.Resolve(condition, isDay)
		if r == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, wxicons.ErrNoSources.Error())
		}
		return c.JSON(newIconResponse(r))
	})

	v1.Get("/icons/:id/frames/:index", func(c *fiber.Ctx) error {
		table, _, err := store.Table()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		r, ok := table.Lookup(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown icon")
		}
		idx, err := strconv.Atoi(c.Params("index"))
		if err != nil || idx < 0 || idx >= len(r.Frames) {
			return fiber.NewError(fiber.StatusNotFound, "frame index out of range")
		}
		return sendFrame(c, packer, r.Frames[idx])
	})

	v1.Get("/types/:type/frames/:index", func(c *fiber.Ctx) error {
		table, _, err := store.Table()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		wt, ok := wxicons.ParseWeatherType(c.Params("type"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown weather type")
		}
		idx, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "frame index must be a number")
		}
		c.Set("X-Frame-Count", strconv.Itoa(table.FrameCount(wt)))
		return sendFrame(c, packer, table.Frame(wt, idx))
	})
}

// sendFrame writes the packed frame as a black on white PNG.
func sendFrame(c *fiber.Ctx, packer wxicons.Packer, f wxicons.MonoFrame) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, packer.Unpack(f)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode frame")
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}
