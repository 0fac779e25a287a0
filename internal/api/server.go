// Package api exposes the LED ring over HTTP and streams flushed frames and
// diagnostics over websockets.
package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/LandynMoreno/zolo/internal/animation"
	diag "github.com/LandynMoreno/zolo/internal/diagnostics"
	"github.com/LandynMoreno/zolo/internal/neopixel"
)

const defaultTestDurationMs = 3000

type Server struct {
	ring      *neopixel.Ring
	hub       *Hub
	log       zerolog.Logger
	driver    string
	startTime time.Time

	initMu sync.Mutex
}

// NewServer hooks the ring's frame observer and animation exits into the
// hub. driver is the configured driver name, used to flag a fall back to
// simulation.
func NewServer(ring *neopixel.Ring, hub *Hub, driver string, log zerolog.Logger) *Server {
	s := &Server{
		ring:      ring,
		hub:       hub,
		log:       log.With().Str("component", "api").Logger(),
		driver:    driver,
		startTime: time.Now(),
	}
	ring.Observe(hub.PublishFrame)
	ring.OnAnimationExit(func(ex animation.Exit) {
		if d, ok := diag.FromExit(ex); ok {
			hub.PushDiag(d)
		}
	})
	return s
}

// Handler builds the gin engine with CORS and request logging.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	s.SetupRoutes(r)
	return r
}

func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	r.GET("/ws", gin.WrapF(s.hub.HandleFramesWS))
	r.GET("/diag", gin.WrapF(s.hub.HandleDiagWS))

	led := r.Group("/led")
	{
		led.GET("/status", s.handleStatus)
		led.POST("/control", s.handleControl)
		led.POST("/pattern", s.handlePattern)
		led.POST("/status/:status", s.handleShowStatus)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// ensureInit opens the strip on first use.
func (s *Server) ensureInit() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.ring.Initialized() {
		return nil
	}
	mode, err := s.ring.Initialize()
	if err != nil {
		return err
	}
	if d, ok := diag.FromMode(s.driver, mode); ok {
		s.hub.PushDiag(d)
	}
	return nil
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	ev := s.log.Warn()
	if code >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).Str("path", c.FullPath()).Int("status", code).Msg("request failed")
	c.JSON(code, ApiResponse{Status: "error", Error: err.Error()})
}

func (s *Server) ok(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, ApiResponse{Status: "success", Message: msg, Data: data})
}

func (s *Server) handleHealth(c *gin.Context) {
	rgb, id := s.hub.LastFrame()
	s.ok(c, "", gin.H{
		"uptime_s":       time.Since(s.startTime).Seconds(),
		"frame_id":       id,
		"estimated_amps": diag.EstimateCurrent(rgb),
		"clients":        s.hub.Clients(),
		"dropped_frames": s.hub.Dropped(),
		"initialized":    s.ring.Initialized(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.ok(c, "", s.ring.Status())
}

func (s *Server) handleControl(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if err := s.ensureInit(); err != nil {
		s.fail(c, err)
		return
	}

	switch req.Action {
	case "set_led":
		if req.LEDIndex == nil || req.Color == "" {
			s.fail(c, fmt.Errorf("%w: led_index and color are required for set_led", errBadRequest))
			return
		}
		col, err := neopixel.ParseColor(req.Color)
		if err != nil {
			s.fail(c, err)
			return
		}
		if err := s.ring.SetPixel(*req.LEDIndex, col); err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, fmt.Sprintf("LED %d set to %s", *req.LEDIndex, col), ControlResponse{LEDIndex: req.LEDIndex, Color: col.String()})

	case "set_all":
		if req.Color == "" {
			s.fail(c, fmt.Errorf("%w: color is required for set_all", errBadRequest))
			return
		}
		col, err := neopixel.ParseColor(req.Color)
		if err != nil {
			s.fail(c, err)
			return
		}
		if err := s.ring.Fill(col); err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, "all LEDs set to "+col.String(), ControlResponse{Color: col.String()})

	case "clear_all":
		if err := s.ring.StopAnimation(); err != nil {
			s.fail(c, err)
			return
		}
		if err := s.ring.Clear(); err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, "all LEDs cleared", nil)

	case "set_brightness":
		if req.Brightness == nil {
			s.fail(c, fmt.Errorf("%w: brightness is required for set_brightness", errBadRequest))
			return
		}
		if err := s.ring.SetBrightness(float64(*req.Brightness) / 100.0); err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, fmt.Sprintf("brightness set to %d%%", *req.Brightness), ControlResponse{Brightness: req.Brightness})
	}
}

func (s *Server) handlePattern(c *gin.Context) {
	var req PatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if err := s.ensureInit(); err != nil {
		s.fail(c, err)
		return
	}
	if req.Brightness != nil && req.Action != "stop" {
		if err := s.ring.SetBrightness(float64(*req.Brightness) / 100.0); err != nil {
			s.fail(c, err)
			return
		}
	}

	switch req.Action {
	case "preset":
		if req.PatternName == "" {
			s.fail(c, fmt.Errorf("%w: pattern_name is required for preset", errBadRequest))
			return
		}
		if err := s.ring.ApplyPreset(req.PatternName, req.Colors); err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, "applied preset "+req.PatternName, PatternResponse{PatternName: req.PatternName, Active: true})

	case "test":
		gen, err := s.ring.StartAnimation(animation.Pattern{Kind: animation.Rainbow})
		if err != nil {
			s.fail(c, err)
			return
		}
		d := defaultTestDurationMs
		if req.Duration != nil {
			d = *req.Duration
		}
		s.ok(c, "test pattern started", PatternResponse{PatternName: "rainbow_cycle", Duration: d, Generation: gen, Active: true})

	case "stop":
		if err := s.ring.StopAnimation(); err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, "pattern stopped", PatternResponse{Active: false})

	case "start":
		p, err := patternFrom(req)
		if err != nil {
			s.fail(c, err)
			return
		}
		gen, err := s.ring.StartAnimation(p)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, "started "+string(p.Kind), PatternResponse{
			PatternName: string(p.Kind),
			Duration:    int(p.Duration / time.Millisecond),
			Generation:  gen,
			Active:      true,
		})
	}
}

func (s *Server) handleShowStatus(c *gin.Context) {
	if err := s.ensureInit(); err != nil {
		s.fail(c, err)
		return
	}
	status := c.Param("status")
	if err := s.ring.ShowStatus(status); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "showing status "+status, s.ring.Status())
}

func patternFrom(req PatternRequest) (animation.Pattern, error) {
	name := req.Pattern
	if name == "" {
		name = req.PatternName
	}
	kind, err := animation.ParseKind(name)
	if err != nil {
		return animation.Pattern{}, err
	}
	p := animation.Pattern{Kind: kind, Color: neopixel.White}
	if req.Color != "" {
		if p.Color, err = neopixel.ParseColor(req.Color); err != nil {
			return animation.Pattern{}, err
		}
	}
	if req.Speed != nil {
		p.Speed = time.Duration(*req.Speed * float64(time.Second))
	}
	if req.Duration != nil {
		p.Duration = time.Duration(*req.Duration) * time.Millisecond
	}
	return p, nil
}
