// Package chartapi serves a compiled chart over HTTP as JSON.
package chartapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"bms-hero/internal/bmsparse"
	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

// Meta is the descriptive part of a chart.
type Meta struct {
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Genre  string  `json:"genre"`
	BPM    float64 `json:"bpm"`
}

// Server answers queries about one chart. Chart and timings are read-only,
// so handlers run concurrently without locking.
type Server struct {
	meta      Meta
	chart     *cbms.Chart
	timings   *bmstime.Timings
	resources []bmsparse.Resource
}

// NewServer creates a server for chart. res is the chart's resource table.
func NewServer(meta Meta, chart *cbms.Chart, tl *bmstime.Timings, res []bmsparse.Resource) *Server {
	return &Server{meta: meta, chart: chart, timings: tl, resources: res}
}

type resourceJSON struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

type commandJSON struct {
	Channel uint32 `json:"channel"`
	Value   uint32 `json:"value"`
}

type slotJSON struct {
	Progress float64       `json:"progress"`
	Commands []commandJSON `json:"commands"`
}

type timedJSON struct {
	Index   int     `json:"index"`
	Bar     float64 `json:"bar"`
	Seconds float64 `json:"seconds"`
	Channel uint32  `json:"channel"`
	Value   uint32  `json:"value"`
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/chart", s.getChart)
	r.GET("/api/bars/:bar", s.getBar)
	r.GET("/api/timed", s.getTimed)
	r.GET("/api/time", s.getTime)
	r.GET("/api/resources", s.getResources)
	return r
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return s.Router().Run(addr)
}

func (s *Server) getChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"meta":        s.meta,
		"barCount":    s.chart.BarCount(),
		"measureSets": len(s.chart.MeasureSets()),
		"slots":       s.chart.SlotCount(),
		"commands":    s.chart.Len(),
		"seconds":     bmstime.Time(s.chart.BarCount()).AbsoluteTime(s.timings),
	})
}

func (s *Server) getBar(c *gin.Context) {
	bar, err := strconv.Atoi(c.Param("bar"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bar must be an integer"})
		return
	}
	it, err := s.chart.IterFromBar(bar)
	switch {
	case errors.Is(err, cbms.ErrBarIsEmpty):
		c.JSON(http.StatusOK, gin.H{"bar": bar, "empty": true, "slots": []slotJSON{}})
		return
	case errors.Is(err, cbms.ErrBarOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slots := []slotJSON{}
	for slot := range it.Slots() {
		if int(slot.Measure) != bar {
			break
		}
		cmds := []commandJSON{}
		for _, cmd := range s.chart.Commands(slot.Commands) {
			cmds = append(cmds, commandJSON{cmd.Channel, cmd.Value})
		}
		slots = append(slots, slotJSON{Progress: slot.Progress, Commands: cmds})
	}
	c.JSON(http.StatusOK, gin.H{"bar": bar, "empty": false, "slots": slots})
}

func (s *Server) getTimed(c *gin.Context) {
	out := []timedJSON{}
	var hint *bmstime.Hint
	for tc := range s.chart.Iter().Flatten().All() {
		cmd, _ := s.chart.CommandAt(tc.Index)
		if cmd.Value == 0 {
			continue
		}
		secs, next := tc.Time.ToAbsoluteTime(s.timings, hint)
		hint = &next
		out = append(out, timedJSON{
			Index:   tc.Index,
			Bar:     tc.Time.Float64(),
			Seconds: secs,
			Channel: cmd.Channel,
			Value:   cmd.Value,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getTime(c *gin.Context) {
	if v, ok := c.GetQuery("bar"); ok {
		bar, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bar must be a number"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bar": bar, "seconds": bmstime.Time(bar).AbsoluteTime(s.timings)})
		return
	}
	if v, ok := c.GetQuery("seconds"); ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be a number"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bar": bmstime.FromAbsoluteTime(secs, s.timings).Float64(), "seconds": secs})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "need bar or seconds"})
}

func (s *Server) getResources(c *gin.Context) {
	out := make([]resourceJSON, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, resourceJSON{Index: r.Index, Path: r.Path})
	}
	c.JSON(http.StatusOK, out)
}
