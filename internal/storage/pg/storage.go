package pg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rds/rdsutils"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/vvangelov/brregservice/internal/config"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Storage is safe for concurrent use. The pool is set once by New.
type Storage struct {
	pool *pgxpool.Pool
}

// dsn returns DATABASE_URL when set, otherwise a URL for the RDS proxy authenticated
// with an IAM token.
func dsn(conf *config.Config) (string, error) {
	if conf.DatabaseURL != "" {
		return conf.DatabaseURL, nil
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(conf.AWSRegion),
	})
	if err != nil {
		return "", fmt.Errorf("aws session: %w", err)
	}
	token, err := rdsutils.BuildAuthToken(conf.RDSProxyEndpoint, conf.AWSRegion, conf.RDSProxyUser, sess.Config.Credentials)
	if err != nil {
		return "", fmt.Errorf("rds auth token: %w", err)
	}
	psqlURL, err := url.Parse("postgres://")
	if err != nil {
		return "", err
	}
	psqlURL.Host = conf.RDSProxyEndpoint
	psqlURL.User = url.UserPassword(conf.RDSProxyUser, token)
	psqlURL.Path = conf.RDSDBName
	q := psqlURL.Query()
	q.Add("sslmode", "require")
	psqlURL.RawQuery = q.Encode()
	return psqlURL.String(), nil
}

func connect(ctx context.Context, conf *config.Config) (*pgxpool.Pool, error) {
	ats := time.Now()
	connString, err := dsn(conf)
	if err != nil {
		return nil, err
	}
	cts := time.Now()
	pool, err := pgxpool.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	logging.Info(ctx, logging.Data{"proxy": conf.RDSProxyEndpoint, "connection_time": time.Since(cts), "auth_time": time.Since(ats)}, "connection stats")
	return pool, nil
}

func New(ctx context.Context, conf *config.Config) (*Storage, error) {
	pool, err := connect(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Storage{pool: pool}, nil
}

// retryable reports whether a query failed on a connection that broke mid-flight.
// pgxpool discards such connections on release.
func retryable(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) Organization(ctx context.Context, number string) (*storage.Data, error) {
	ts := time.Now()
	data := &storage.Data{}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	op := func() error {
		err := pgxscan.Get(ctx, s.pool, data, retrieveQuery, number)
		if err == nil {
			return nil
		}
		logging.Error(ctx, err, logging.Data{"number": number}, "query error")
		switch {
		case pgxscan.NotFound(err):
			return backoff.Permanent(storage.ErrNotFound)
		case retryable(err):
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	logging.Info(ctx, logging.Data{"number": number, "query_time": time.Since(ts)}, "query stats")
	return data, nil
}

// Upsert looks the number up and inserts or updates by id inside one transaction that
// holds an advisory lock on the number.
func (s *Storage) Upsert(ctx context.Context, org storage.Organization) (err error) {
	ts := time.Now()
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin: %w", storage.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
				logging.Error(ctx, rerr, logging.Data{"number": org.Number}, "rollback failed")
			}
		}
	}()

	if _, err = tx.Exec(ctx, lockQuery, org.Number); err != nil {
		return fmt.Errorf("%w: lock: %w", storage.ErrStorage, err)
	}

	var row struct {
		ID int64 `db:"id"`
	}
	op := "update"
	err = pgxscan.Get(ctx, tx, &row, selectIDQuery, org.Number)
	switch {
	case pgxscan.NotFound(err):
		op = "insert"
		_, err = tx.Exec(ctx, insertQuery, org.Number, org.Name, org.Address, org.PostalCode)
	case err == nil:
		_, err = tx.Exec(ctx, updateQuery, row.ID, org.Number, org.Name, org.Address, org.PostalCode)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", storage.ErrStorage, op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", storage.ErrStorage, err)
	}
	logging.Info(ctx, logging.Data{"number": org.Number, "operation": op, "query_time": time.Since(ts)}, "upsert stats")
	return nil
}
