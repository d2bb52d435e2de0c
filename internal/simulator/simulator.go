package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Config tells the simulator where the API lives and how to authenticate.
// The account must be staff or admin so simulated collections are accepted.
type Config struct {
	APIBaseURL string
	Email      string
	Password   string
	Interval   time.Duration
}

// fillRange is the per-tick fill increase band for a bin type, in percent
type fillRange struct {
	min, max float64
}

// Fill speeds mirror how the different streams behave in the field: organic
// fills fastest, hazardous drop-off is rare.
var fillRanges = map[string]fillRange{
	"general":    {1.5, 4.0},
	"recyclable": {0.8, 2.5},
	"organic":    {2.0, 5.0},
	"hazardous":  {0.3, 1.0},
}

const (
	// settleChance is the probability a tick compacts instead of fills
	settleChance = 0.05
	// autoCollectLevel is where a simulated crew shows up
	autoCollectLevel  = 95.0
	autoCollectChance = 0.25

	baselineTemp     = 27.0
	baselineHumidity = 60.0
)

type binState struct {
	ID      string
	Code    string
	BinType string
	Level   float64
	Battery float64
}

// Simulator drives a fleet of virtual fill sensors against the live API:
// it logs in, discovers the active bins, and then posts readings on a timer.
type Simulator struct {
	cfg    Config
	client *http.Client
	faker  *gofakeit.Faker
	token  string
	bins   []*binState
}

func New(cfg Config) *Simulator {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8080"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Simulator{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		faker:  gofakeit.New(0),
	}
}

// Login authenticates against the API and stores the bearer token
func (s *Simulator) Login(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{
		"email":    s.cfg.Email,
		"password": s.cfg.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBaseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var loginResp struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("could not decode login response: %w", err)
	}
	if !loginResp.OK || loginResp.Token == "" {
		return fmt.Errorf("login rejected for %s", s.cfg.Email)
	}

	s.token = loginResp.Token
	log.Printf("🔐 Simulator logged in as %s", s.cfg.Email)
	return nil
}

// LoadBins fetches the active bins the simulator will impersonate
func (s *Simulator) LoadBins(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIBaseURL+"/api/bins?status=active", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("bins request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bins request failed with status %d", resp.StatusCode)
	}

	var bins []struct {
		ID                string  `json:"id"`
		Code              string  `json:"code"`
		BinType           string  `json:"bin_type"`
		CurrentWasteLevel float64 `json:"current_waste_level"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bins); err != nil {
		return fmt.Errorf("could not decode bins response: %w", err)
	}

	s.bins = s.bins[:0]
	for _, bin := range bins {
		s.bins = append(s.bins, &binState{
			ID:      bin.ID,
			Code:    bin.Code,
			BinType: bin.BinType,
			Level:   bin.CurrentWasteLevel,
			Battery: s.faker.Float64Range(70, 100),
		})
	}

	log.Printf("🗑️  Simulating %d bins", len(s.bins))
	return nil
}

// Run ticks forever until the context is cancelled
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.Login(ctx); err != nil {
		return err
	}
	if err := s.LoadBins(ctx); err != nil {
		return err
	}
	if len(s.bins) == 0 {
		return fmt.Errorf("no active bins to simulate")
	}

	log.Printf("▶️  Simulator running every %s", s.cfg.Interval)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️  Simulator stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// RunOnce performs a single tick across the fleet
func (s *Simulator) RunOnce(ctx context.Context) error {
	if err := s.Login(ctx); err != nil {
		return err
	}
	if err := s.LoadBins(ctx); err != nil {
		return err
	}
	if len(s.bins) == 0 {
		return fmt.Errorf("no active bins to simulate")
	}
	s.Tick(ctx)
	return nil
}

// Tick advances every bin one step and posts the resulting readings
func (s *Simulator) Tick(ctx context.Context) {
	posted := 0
	collected := 0

	for _, bin := range s.bins {
		s.advance(bin)

		if err := s.postReading(ctx, bin); err != nil {
			log.Printf("⚠️  Reading for %s failed: %v", bin.Code, err)
			continue
		}
		posted++

		// A nearly full bin eventually gets a crew visit
		if bin.Level >= autoCollectLevel && s.faker.Float64Range(0, 1) < autoCollectChance {
			if err := s.collect(ctx, bin); err != nil {
				log.Printf("⚠️  Collection for %s failed: %v", bin.Code, err)
				continue
			}
			collected++
		}
	}

	log.Printf("📡 Tick: %d readings posted, %d bins collected", posted, collected)
}

// CollectAll empties every simulated bin at or above the threshold
func (s *Simulator) CollectAll(ctx context.Context, threshold float64) error {
	if err := s.Login(ctx); err != nil {
		return err
	}
	if err := s.LoadBins(ctx); err != nil {
		return err
	}

	collected := 0
	for _, bin := range s.bins {
		if bin.Level < threshold {
			continue
		}
		if err := s.collect(ctx, bin); err != nil {
			log.Printf("⚠️  Collection for %s failed: %v", bin.Code, err)
			continue
		}
		collected++
	}

	log.Printf("🚛 Collected %d bins at or above %.0f%%", collected, threshold)
	return nil
}

// advance moves a bin's fill level one tick. Most ticks add waste at the
// type's fill speed; occasionally the contents settle and the level dips.
func (s *Simulator) advance(bin *binState) {
	band, ok := fillRanges[bin.BinType]
	if !ok {
		band = fillRanges["general"]
	}

	if s.faker.Float64Range(0, 1) < settleChance {
		bin.Level -= s.faker.Float64Range(0.3, 1.5)
	} else {
		bin.Level += s.faker.Float64Range(band.min, band.max)
	}
	bin.Level = math.Max(0, math.Min(100, bin.Level))

	// Batteries drain slowly, with a little measurement noise
	bin.Battery -= s.faker.Float64Range(0.005, 0.02)
	bin.Battery = math.Max(5, bin.Battery)
}

func (s *Simulator) postReading(ctx context.Context, bin *binState) error {
	battery := math.Round(bin.Battery*10) / 10
	payload := map[string]interface{}{
		"waste_level":   math.Round(bin.Level*100) / 100,
		"temperature":   math.Round((baselineTemp+s.faker.Float64Range(-3, 5))*100) / 100,
		"humidity":      math.Round((baselineHumidity+s.faker.Float64Range(-15, 15))*100) / 100,
		"battery_level": battery,
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/api/bins/%s/readings", s.cfg.APIBaseURL, bin.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// collect simulates a crew emptying the bin, leaving a small residual
func (s *Simulator) collect(ctx context.Context, bin *binState) error {
	residual := s.faker.Float64Range(2, 8)
	body, _ := json.Marshal(map[string]interface{}{
		"level_after": math.Round(residual*100) / 100,
	})

	url := fmt.Sprintf("%s/api/bins/%s/collections", s.cfg.APIBaseURL, bin.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	bin.Level = residual
	return nil
}
