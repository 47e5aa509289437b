// Package api provides the REST API server for chordbutton
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/james-see/chordbutton/pkg/address"
	"github.com/james-see/chordbutton/pkg/bank"
	"github.com/james-see/chordbutton/pkg/button"
	"github.com/james-see/chordbutton/pkg/chord"
	"github.com/james-see/chordbutton/pkg/chordbutton"
	"github.com/james-see/chordbutton/pkg/config"
	"github.com/james-see/chordbutton/pkg/sender"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ChordButton API
// @version 1.0
// @description API for playing a bankable MIDI chord button through a virtual pin
// @host localhost:8080
// @BasePath /api/v1

// EventLimit is the number of note events the server keeps
const EventLimit = 1024

const shutdownTimeout = 5 * time.Second

// Server drives one chord button from HTTP requests
type Server struct {
	pin      *button.VirtualPin
	button   *chordbutton.ChordButton
	output   bank.OutputConfig
	recorder *sender.Recorder
	loop     *chordbutton.Loop
}

// State is a snapshot of the button
type State struct {
	Pressed       bool              `json:"pressed"`
	Held          bool              `json:"held"`
	DebounceMs    int64             `json:"debounce_ms"`
	Bank          int               `json:"bank"`
	NumBanks      int               `json:"num_banks"`
	TracksPerBank int               `json:"tracks_per_bank"`
	BankType      string            `json:"bank_type"`
	Address       address.Address   `json:"address"`
	Chord         []int8            `json:"chord"`
	Pending       []int8            `json:"pending"`
	Notes         []address.Address `json:"notes"`
	Sounding      []address.Address `json:"sounding"`
}

type chordRequest struct {
	Name    string `json:"name"`
	Offsets []int8 `json:"offsets"`
}

type bankRequest struct {
	Selection *int `json:"selection" binding:"required"`
}

// NewServer builds the button described by cfg. Every note event goes to
// the server's recorder and to the extra senders.
func NewServer(cfg config.Config, extra ...sender.Sender) (*Server, error) {
	rec := sender.NewRecorder(EventLimit)
	var out sender.Sender = rec
	if len(extra) > 0 {
		out = sender.Tee(append([]sender.Sender{rec}, extra...)...)
	}

	pin := button.NewVirtualPin()
	cb, output, err := cfg.NewButton(pin, out)
	if err != nil {
		return nil, err
	}
	return &Server{
		pin:      pin,
		button:   cb,
		output:   output,
		recorder: rec,
		loop:     chordbutton.NewLoop(cfg.PollInterval, cb),
	}, nil
}

// Run polls the button until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	return s.loop.Run(ctx)
}

// Router returns the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/chords", listChords)
		v1.GET("/state", s.getState)
		v1.POST("/button/press", s.press)
		v1.POST("/button/release", s.release)
		v1.PUT("/chord", s.setChord)
		v1.PUT("/bank", s.selectBank)
		v1.GET("/events", s.listEvents)
		v1.DELETE("/events", s.clearEvents)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Handler wraps the router with CORS handling
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.Router())
}

// StartServer starts the API server and blocks until it is interrupted
func StartServer(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extra []sender.Sender
	if len(cfg.OutPorts) > 0 {
		notes, err := openNoteSender(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = notes.Close() }()
		extra = append(extra, notes)
	}

	srv, err := NewServer(cfg, extra...)
	if err != nil {
		return err
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- srv.Run(ctx) }()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Handler(),
	}
	go func() {
		select {
		case <-ctx.Done():
		case err := <-loopErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("button loop stopped: %v", err)
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	err = httpServer.ListenAndServe()

	// the loop releases a held chord before it stops; wait for that
	// before the output ports close
	stop()
	<-srv.loop.Done()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openNoteSender(ctx context.Context, cfg config.Config) (*sender.NoteSender, error) {
	outs, err := sender.FindOutPorts(cfg.OutPorts...)
	if err != nil {
		return nil, err
	}
	notes, err := sender.NewNoteSender(outs, sender.WithVelocity(cfg.Velocity, sender.DefaultOffVelocity))
	if err != nil {
		return nil, err
	}
	if err := notes.Open(); err != nil {
		return nil, err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-notes.Errors():
				log.Printf("midi output: %v", err)
			}
		}
	}()
	return notes, nil
}

// snapshot reads the button state on the polling goroutine
func (s *Server) snapshot(ctx context.Context) (State, error) {
	var st State
	err := s.loop.Do(ctx, func() {
		st = State{
			Pressed:    s.button.Pressed(),
			Held:       s.pin.Held(),
			DebounceMs: s.button.Debounce().Milliseconds(),
			BankType:   s.output.Type.String(),
			Address:    s.button.Address(),
			Chord:      chord.Offsets(s.button.Chord()),
			Notes:      s.button.Notes(),
		}
		if p := s.button.Pending(); p != nil {
			st.Pending = chord.Offsets(p)
		}
	})
	if err != nil {
		return State{}, err
	}
	if b := s.output.Bank; b != nil {
		st.Bank = b.Selection()
		st.NumBanks = b.NumBanks()
		st.TracksPerBank = b.TracksPerBank()
	}
	st.Sounding = s.recorder.Sounding()
	return st, nil
}

func (s *Server) respondState(c *gin.Context, status int) {
	st, err := s.snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, st)
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "chordbutton",
	})
}

// listChords godoc
// @Summary List chord presets
// @Description Returns every chord preset with its semitone offsets
// @Tags info
// @Produce json
// @Success 200 {object} map[string]map[string][]int
// @Router /api/v1/chords [get]
func listChords(c *gin.Context) {
	chords := make(map[string][]int8)
	for _, name := range chord.Names() {
		ch, _ := chord.Lookup(name)
		chords[name] = chord.Offsets(ch)
	}
	c.JSON(http.StatusOK, gin.H{"chords": chords})
}

// getState godoc
// @Summary Button state
// @Description Returns the pressed state, bank, chords and the notes the button sends
// @Tags button
// @Produce json
// @Success 200 {object} State
// @Failure 503 {object} map[string]string
// @Router /api/v1/state [get]
func (s *Server) getState(c *gin.Context) {
	s.respondState(c, http.StatusOK)
}

// press godoc
// @Summary Press the button
// @Description Pulls the virtual pin low. The chord sounds once the press is debounced.
// @Tags button
// @Produce json
// @Success 202 {object} map[string]bool
// @Router /api/v1/button/press [post]
func (s *Server) press(c *gin.Context) {
	s.pin.Press()
	c.JSON(http.StatusAccepted, gin.H{"held": true})
}

// release godoc
// @Summary Release the button
// @Description Lets the virtual pin float high again
// @Tags button
// @Produce json
// @Success 202 {object} map[string]bool
// @Router /api/v1/button/release [post]
func (s *Server) release(c *gin.Context) {
	s.pin.Release()
	c.JSON(http.StatusAccepted, gin.H{"held": false})
}

// setChord godoc
// @Summary Change the chord
// @Description Sets the chord by preset name or by offsets. While the button is held the change waits for the next press.
// @Tags button
// @Accept json
// @Produce json
// @Param chord body chordRequest true "Preset name or offsets"
// @Success 200 {object} State
// @Failure 400 {object} map[string]string
// @Router /api/v1/chord [put]
func (s *Server) setChord(c *gin.Context) {
	var req chordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ch chord.Chord
	switch {
	case req.Name != "":
		var err error
		if ch, err = config.ParseChord(req.Name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	case req.Offsets != nil:
		ch = chord.Of(req.Offsets...)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "name or offsets required"})
		return
	}

	if err := s.loop.Do(c.Request.Context(), func() { s.button.SetChord(ch) }); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	s.respondState(c, http.StatusOK)
}

// selectBank godoc
// @Summary Select a bank
// @Description Changes the bank setting. A held chord keeps its address until release.
// @Tags button
// @Accept json
// @Produce json
// @Param bank body bankRequest true "Bank selection"
// @Success 200 {object} State
// @Failure 400 {object} map[string]string
// @Router /api/v1/bank [put]
func (s *Server) selectBank(c *gin.Context) {
	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.output.Bank == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "button has no bank"})
		return
	}
	if err := s.output.Bank.Select(*req.Selection); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondState(c, http.StatusOK)
}

// listEvents godoc
// @Summary Recorded note events
// @Description Returns the note events sent so far and the notes still sounding
// @Tags events
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/events [get]
func (s *Server) listEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"events":   s.recorder.Events(),
		"sounding": s.recorder.Sounding(),
	})
}

// clearEvents godoc
// @Summary Clear recorded events
// @Tags events
// @Success 204
// @Router /api/v1/events [delete]
func (s *Server) clearEvents(c *gin.Context) {
	s.recorder.Reset()
	c.Status(http.StatusNoContent)
}
