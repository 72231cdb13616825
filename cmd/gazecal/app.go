package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/LdDl/gaze-go/gaze"
	"github.com/LdDl/gaze-go/internal/config"
	"github.com/LdDl/gaze-go/internal/log"
	"github.com/LdDl/gaze-go/internal/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type app struct {
	profile    *config.DeviceProfile
	cfg        *config.CalibrationConfig
	db         *store.Store
	strategies []gaze.Strategy
	folds      int
	username   string
	device     string
	logger     *slog.Logger
}

func newApp(opts *options) (*app, error) {
	profile, err := config.LoadDeviceProfile(opts.profilePath)
	if err != nil {
		return nil, errors.Wrap(err, "can't load device profile")
	}
	cfg := config.DefaultCalibrationConfig()
	if opts.configPath != "" {
		if cfg, err = config.LoadCalibrationConfig(opts.configPath); err != nil {
			return nil, errors.Wrap(err, "can't load calibration config")
		}
	}
	strategies, err := resolveStrategies(opts.strategy, cfg)
	if err != nil {
		return nil, err
	}
	folds := cfg.GetFolds()
	if opts.folds != 0 {
		folds = opts.folds
	}
	db, err := store.New(opts.dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "can't open store")
	}
	return &app{
		profile:    profile,
		cfg:        cfg,
		db:         db,
		strategies: strategies,
		folds:      folds,
		username:   opts.username,
		device:     opts.device,
		logger:     log.With("component", "gazecal"),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("can't close store", "error", err)
	}
}

// resolveStrategies turns -strategy flag into list of strategies, falling back to config
func resolveStrategies(name string, cfg *config.CalibrationConfig) ([]gaze.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return []gaze.Strategy{cfg.GetStrategy()}, nil
	case "all":
		return gaze.Strategies, nil
	}
	strategy, err := gaze.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return []gaze.Strategy{strategy}, nil
}

// importedSample is a sample as exported from capture app.
// Gaze may be omitted when eye transform (relative to face) is present: it is estimated then
type importedSample struct {
	Target        [2]float64   `json:"target"`
	Gaze          *[2]float64  `json:"gaze,omitempty"`
	FaceTransform *[16]float64 `json:"face_transform,omitempty"`
	EyeTransform  *[16]float64 `json:"eye_transform,omitempty"`
	Position      string       `json:"position,omitempty"`
	Distance      string       `json:"distance,omitempty"`
	Timestamp     *time.Time   `json:"timestamp,omitempty"`
}

// loadImport reads samples from JSON array or capture app CSV export.
// Username and device are known for CSV only
func loadImport(path string) ([]importedSample, string, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", "", errors.Wrap(err, "can't read samples")
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		records, err := readCaptureCSV(file)
		if err != nil {
			return nil, "", "", errors.Wrap(err, "can't parse capture CSV")
		}
		if len(records) == 0 {
			return nil, "", "", nil
		}
		items := make([]importedSample, len(records))
		for i := range records {
			items[i] = records[i].sample
		}
		return items, records[0].username, records[0].device, nil
	}

	var items []importedSample
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		return nil, "", "", errors.Wrap(err, "can't parse samples")
	}
	return items, "", "", nil
}

func (a *app) importSession(path string) (uuid.UUID, error) {
	imported, username, device, err := loadImport(path)
	if err != nil {
		return uuid.Nil, err
	}
	projector, err := gaze.NewProjector(a.profile.Screen(), gaze.WithAllowBehindEye(a.cfg.GetAllowBehindEye()), gaze.WithLogger(a.logger))
	if err != nil {
		return uuid.Nil, err
	}

	if a.username != "" {
		username = a.username
	}
	if a.device != "" {
		device = a.device
	}
	if device == "" {
		device = a.profile.Name
	}
	session := &store.Session{
		Username: username,
		Device:   device,
		Samples:  make([]store.Sample, 0, len(imported)),
	}
	bounds := a.profile.Screen().Bounds()
	for i, item := range imported {
		sample, ok, err := a.convert(item, projector)
		if err != nil {
			return uuid.Nil, errors.Wrapf(err, "sample %d", i)
		}
		if !ok {
			a.logger.Warn("gaze does not hit the screen, sample skipped", "sample", i)
			continue
		}
		if !bounds.ContainsPoint(sample.Target) {
			a.logger.Warn("target is outside of the screen", "sample", i, "target", sample.Target)
		}
		session.Samples = append(session.Samples, sample)
	}
	if len(session.Samples) == 0 {
		return uuid.Nil, gaze.ErrNoSamples
	}
	id, err := a.db.Sessions().Create(session)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "can't store session")
	}
	a.logger.Info("session imported", "session", id, "samples", len(session.Samples), "skipped", len(imported)-len(session.Samples))
	return id, nil
}

func (a *app) convert(item importedSample, projector *gaze.Projector) (store.Sample, bool, error) {
	sample := store.Sample{}
	sample.Target = gaze.NewPoint(item.Target[0], item.Target[1])
	sample.FacePose = gaze.IdentityPose()
	if item.FaceTransform != nil {
		sample.FacePose = gaze.PoseFromMatrix(*item.FaceTransform)
	}
	switch {
	case item.Gaze != nil:
		sample.Gaze = gaze.NewPoint(item.Gaze[0], item.Gaze[1])
	case item.EyeTransform != nil:
		estimate, ok := projector.Estimate(sample.FacePose, gaze.PoseFromMatrix(*item.EyeTransform))
		if !ok {
			return sample, false, nil
		}
		sample.Gaze = estimate
	default:
		return sample, false, errors.New("either gaze or eye_transform is required")
	}
	if item.Position != "" {
		position, err := gaze.ParseHeadPosition(item.Position)
		if err != nil {
			return sample, false, err
		}
		sample.Position = position
	}
	if item.Distance != "" {
		distance, err := gaze.ParseViewingDistance(item.Distance)
		if err != nil {
			return sample, false, err
		}
		sample.Distance = distance
	}
	if item.Timestamp != nil {
		sample.Timestamp = *item.Timestamp
	}
	return sample, true, nil
}

func (a *app) session(rawID string) (*store.Session, error) {
	if rawID == "" {
		session, err := a.db.Sessions().Latest(a.username, a.device)
		if err != nil {
			return nil, errors.Wrap(err, "can't find latest session")
		}
		return session, nil
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.Wrapf(err, "bad session id '%s'", rawID)
	}
	session, err := a.db.Sessions().Get(id)
	if err != nil {
		return nil, errors.Wrapf(err, "can't get session %s", id)
	}
	return session, nil
}

func (a *app) listSessions(w io.Writer) error {
	sessions, err := a.db.Sessions().List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tDEVICE\tCREATED\tSAMPLES")
	for _, session := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", session.ID, session.Username, session.Device, session.CreatedAt.Format(time.RFC3339), session.SampleCount)
	}
	return tw.Flush()
}
