package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image/gif"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

var ErrNoFrames = errors.New("storage: capture has no frames")

const (
	metadataFile  = "metadata.json"
	captureFile   = "capture.gif"
	telemetryFile = "telemetry.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type CaptureMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Mode      string             `json:"mode"`
	Palette   string             `json:"palette"`
	Particles int                `json:"particles"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	FPS       int                `json:"fps"`
	Frames    int                `json:"frames"`
	Duration  float64            `json:"duration"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Sample is one telemetry row recorded alongside a captured frame.
type Sample struct {
	Time      float64
	FPS       float64
	Energy    float64
	MeanSpeed float64
	Particles int
}

// SaveCapture writes the animation, its metadata and optional telemetry
// under a fresh capture directory and returns the capture id.
func (s *Store) SaveCapture(meta CaptureMetadata, anim *gif.GIF, samples []Sample) (string, error) {
	if anim == nil || len(anim.Image) == 0 {
		return "", ErrNoFrames
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Mode, meta.Timestamp.UnixNano())
	}
	meta.Frames = len(anim.Image)

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	gifFile, err := os.Create(filepath.Join(dir, captureFile))
	if err != nil {
		return "", err
	}
	if err := gif.EncodeAll(gifFile, anim); err != nil {
		gifFile.Close()
		return "", fmt.Errorf("storage: encode gif: %w", err)
	}
	if err := gifFile.Close(); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if len(samples) == 0 {
		return meta.ID, nil
	}
	if err := writeTelemetry(filepath.Join(dir, telemetryFile), samples); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeTelemetry(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "fps", "energy", "mean_speed", "particles"}); err != nil {
		return err
	}
	for _, sm := range samples {
		row := []string{
			strconv.FormatFloat(sm.Time, 'f', 4, 64),
			strconv.FormatFloat(sm.FPS, 'f', 2, 64),
			strconv.FormatFloat(sm.Energy, 'f', 4, 64),
			strconv.FormatFloat(sm.MeanSpeed, 'f', 4, 64),
			strconv.Itoa(sm.Particles),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable capture, newest first.
func (s *Store) List() ([]CaptureMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []CaptureMetadata{}, nil
		}
		return nil, err
	}

	caps := make([]CaptureMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta CaptureMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		caps = append(caps, meta)
	}

	sort.Slice(caps, func(i, j int) bool {
		return caps[i].Timestamp.After(caps[j].Timestamp)
	})
	return caps, nil
}

func (s *Store) Load(id string) (*CaptureMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta CaptureMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadGIF(id string) (*gif.GIF, error) {
	f, err := os.Open(s.GIFPath(id))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gif.DecodeAll(f)
}

func (s *Store) GIFPath(id string) string {
	return filepath.Join(s.baseDir, id, captureFile)
}

func (s *Store) LoadTelemetry(id string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, telemetryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		var sm Sample
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				perr = err
			}
			return v
		}
		sm.Time = parse(record[0])
		sm.FPS = parse(record[1])
		sm.Energy = parse(record[2])
		sm.MeanSpeed = parse(record[3])
		n, err := strconv.Atoi(record[4])
		if err != nil || perr != nil {
			continue
		}
		sm.Particles = n
		samples = append(samples, sm)
	}

	return samples, nil
}
