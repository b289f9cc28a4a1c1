package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/archive"
	"goban/internal/domain/sgf"
	errs "goban/internal/errors"
)

const gamesCollection = "games"

type ArchiveStorage struct {
	cfg   *bootstrap.Config
	log   *zap.SugaredLogger
	mongo *mongo.Database
}

func NewArchiveStorage(cfg *bootstrap.Config, log *zap.SugaredLogger, mongo *mongo.Database) *ArchiveStorage {
	return &ArchiveStorage{
		cfg:   cfg,
		log:   log,
		mongo: mongo,
	}
}

// PutGame stores g, assigning an id and creation time when they are unset.
func (a *ArchiveStorage) PutGame(ctx context.Context, g archive.Game) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	_, err := a.mongo.Collection(gamesCollection).InsertOne(ctx, g)
	if err != nil {
		return "", fmt.Errorf("insert game %s: %w", g.ID, err)
	}

	a.log.Infof("game archived with id: %s", g.ID)
	return g.ID, nil
}

func (a *ArchiveStorage) GetGame(ctx context.Context, id string) (archive.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var found archive.Game
	err := a.mongo.Collection(gamesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return archive.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		return archive.Game{}, fmt.Errorf("find game %s: %w", id, err)
	}
	return found, nil
}

// ListGames returns one page of the archive, newest first. Pages start at 1.
func (a *ArchiveStorage) ListGames(ctx context.Context, pageNum int) (*archive.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if pageNum < 1 {
		pageNum = 1
	}
	pageLimit := a.cfg.PageLimitGames
	if pageLimit < 1 {
		pageLimit = 20
	}

	collection := a.mongo.Collection(gamesCollection)

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((pageNum - 1) * pageLimit)).
		SetLimit(int64(pageLimit)).
		SetProjection(bson.M{"transcript": 0})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find games: %w", err)
	}
	defer cursor.Close(ctx)

	games := make([]archive.Game, 0, pageLimit)
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}

	return &archive.Page{
		PageNum:    pageNum,
		TotalPages: int((total + int64(pageLimit) - 1) / int64(pageLimit)),
		Total:      total,
		Games:      games,
	}, nil
}

// ImportDirectory walks pathToGames and archives every *.sgf file that
// parses. Files rejected by the parser are listed in the report and do not
// stop the walk; read and insert errors do.
func (a *ArchiveStorage) ImportDirectory(ctx context.Context, pathToGames string) (*archive.ImportReport, error) {
	report := &archive.ImportReport{Skipped: map[string]string{}}

	err := filepath.Walk(pathToGames, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.EqualFold(filepath.Ext(info.Name()), ".sgf") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		text := string(data)
		rec, err := sgf.Parse(text)
		if err != nil {
			a.log.Warnf("skipping %s: %v", path, err)
			report.Skipped[path] = err.Error()
			return nil
		}

		if _, err = a.PutGame(ctx, archive.FromRecord(path, text, rec)); err != nil {
			return err
		}
		report.Imported++
		return nil
	})
	if err != nil {
		return report, err
	}

	a.log.Infof("imported %d games from %s, skipped %d", report.Imported, pathToGames, len(report.Skipped))
	return report, nil
}
