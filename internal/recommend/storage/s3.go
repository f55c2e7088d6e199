// Item2Item - Co-occurrence Top-K Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/item2item

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/item2item/internal/config"
	"github.com/tomtom215/item2item/internal/logging"
	"github.com/tomtom215/item2item/internal/recommend"
)

const (
	backendS3   = "s3"
	metaExt     = ".meta.json"
	breakerName = "s3-store"
)

// S3Store keeps artifacts in an S3 bucket:
//
//	s3://{bucket}/{prefix}/{name}/{name}_v{version}.gob.gz
//	s3://{bucket}/{prefix}/{name}/{name}_v{version}.meta.json
//
// Every call goes through a circuit breaker so an unreachable endpoint
// fails fast instead of stalling rebuilds.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	cb     *breaker
	logger zerolog.Logger
}

// NewS3Store builds a client from cfg and verifies the bucket exists,
// creating it when cfg.CreateBucket is set.
//
//nolint:gocritic // config passed by value, mirrors the other constructors
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	s := newS3Store(client, cfg.Bucket, cfg.Prefix, DefaultBreakerSettings())
	if err := s.ensureBucket(ctx, cfg.Region, cfg.CreateBucket); err != nil {
		return nil, err
	}
	return s, nil
}

func newS3Store(client *s3.Client, bucket, prefix string, bs BreakerSettings) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		cb:     newBreaker(breakerName, bs),
		logger: logging.WithComponent("s3-store").With().Str("bucket", bucket).Logger(),
	}
}

// ensureBucket checks the bucket and optionally creates it.
func (s *S3Store) ensureBucket(ctx context.Context, region string, create bool) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !create {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) || httpStatus(err) == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info().Msg("created bucket")
	return nil
}

// joinObjectKey joins non-empty segments with "/".
func joinObjectKey(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}

func (s *S3Store) artifactKey(name string, version int) string {
	return joinObjectKey(s.prefix, name, fmt.Sprintf("%s_v%d%s", name, version, artifactExt))
}

func (s *S3Store) metaKey(name string, version int) string {
	return joinObjectKey(s.prefix, name, fmt.Sprintf("%s_v%d%s", name, version, metaExt))
}

// URI returns the s3:// address of key.
func (s *S3Store) URI(key string) string {
	return "s3://" + s.bucket + "/" + key
}

// Breaker returns the circuit breaker state name.
func (s *S3Store) Breaker() string {
	return s.cb.State()
}

func (s *S3Store) put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.cb.execute(func() (any, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.URI(key), err)
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	data, err := castResult[[]byte](s.cb.execute(func() (any, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, s.URI(key))
			}
			return nil, err
		}
		defer func() { _ = out.Body.Close() }()
		return io.ReadAll(out.Body)
	}))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.URI(key), err)
	}
	return data, nil
}

func (s *S3Store) remove(ctx context.Context, key string) error {
	_, err := s.cb.execute(func() (any, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.URI(key), err)
	}
	return nil
}

// listKeys returns every key under prefix.
func (s *S3Store) listKeys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := castResult[[]string](s.cb.execute(func() (any, error) {
		var keys []string
		p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			for _, obj := range page.Contents {
				keys = append(keys, aws.ToString(obj.Key))
			}
		}
		return keys, nil
	}))
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
	}
	return keys, nil
}

// versions returns the stored versions of name in ascending order.
func (s *S3Store) versions(ctx context.Context, name string) ([]int, error) {
	keys, err := s.listKeys(ctx, joinObjectKey(s.prefix, name)+"/")
	if err != nil {
		return nil, err
	}
	var versions []int
	for _, key := range keys {
		base := path.Base(key)
		if !strings.HasSuffix(base, artifactExt) {
			continue
		}
		n, v := parseArtifactFilename(strings.TrimSuffix(base, artifactExt))
		if n == name {
			versions = append(versions, v)
		}
	}
	slices.Sort(versions)
	return versions, nil
}

// Save uploads snap as the next version of name. Concurrent writers to the
// same name must be serialized by the caller.
//
//nolint:gocritic // meta passed by value is completed and returned
func (s *S3Store) Save(ctx context.Context, name string, snap *recommend.Snapshot, meta Metadata) (_ Metadata, err error) {
	start := time.Now()
	defer func() { observe(backendS3, "save", start, err) }()

	if err := validateName(name); err != nil {
		return Metadata{}, err
	}
	versions, err := s.versions(ctx, name)
	if err != nil {
		return Metadata{}, err
	}

	meta.Name = name
	meta.Version = latest(versions) + 1
	meta.SavedAt = time.Now().UTC()

	data, meta, err := encodeArtifact(snap, meta)
	if err != nil {
		return Metadata{}, err
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return Metadata{}, fmt.Errorf("marshal metadata: %w", err)
	}

	// The artifact goes first: a version only counts once its payload exists.
	if err := s.put(ctx, s.artifactKey(name, meta.Version), "application/gzip", data); err != nil {
		return Metadata{}, err
	}
	if err := s.put(ctx, s.metaKey(name, meta.Version), "application/json", metaJSON); err != nil {
		return Metadata{}, err
	}

	s.logger.Info().Str("uri", s.URI(s.artifactKey(name, meta.Version))).Int("version", meta.Version).Msg("artifact uploaded")
	return meta, nil
}

// Load downloads a version of name; version 0 means latest.
func (s *S3Store) Load(ctx context.Context, name string, version int) (_ *recommend.Snapshot, _ Metadata, err error) {
	start := time.Now()
	defer func() { observe(backendS3, "load", start, err) }()

	if version == 0 {
		versions, err := s.versions(ctx, name)
		if err != nil {
			return nil, Metadata{}, err
		}
		if version = latest(versions); version == 0 {
			return nil, Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}

	data, err := s.get(ctx, s.artifactKey(name, version))
	if err != nil {
		return nil, Metadata{}, err
	}
	return decodeArtifact(bytes.NewReader(data))
}

// LatestVersion returns the newest version of name.
func (s *S3Store) LatestVersion(ctx context.Context, name string) (int, bool, error) {
	versions, err := s.versions(ctx, name)
	if err != nil {
		return 0, false, err
	}
	v := latest(versions)
	return v, v > 0, nil
}

// List returns the metadata of the latest version of every artifact,
// ordered by name.
func (s *S3Store) List(ctx context.Context) ([]Metadata, error) {
	root := s.prefix
	if root != "" {
		root += "/"
	}
	keys, err := s.listKeys(ctx, root)
	if err != nil {
		return nil, err
	}

	latestByName := make(map[string]int)
	for _, key := range keys {
		base := path.Base(key)
		if !strings.HasSuffix(base, artifactExt) {
			continue
		}
		if n, v := parseArtifactFilename(strings.TrimSuffix(base, artifactExt)); n != "" && v > latestByName[n] {
			latestByName[n] = v
		}
	}

	names := make([]string, 0, len(latestByName))
	for n := range latestByName {
		names = append(names, n)
	}
	slices.Sort(names)

	list := make([]Metadata, 0, len(names))
	for _, n := range names {
		data, err := s.get(ctx, s.metaKey(n, latestByName[n]))
		if err != nil {
			s.logger.Warn().Err(err).Str("name", n).Msg("skipping artifact without metadata")
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			s.logger.Warn().Err(err).Str("name", n).Msg("skipping artifact with unreadable metadata")
			continue
		}
		list = append(list, meta)
	}
	return list, nil
}

// Delete removes one version.
func (s *S3Store) Delete(ctx context.Context, name string, version int) (err error) {
	start := time.Now()
	defer func() { observe(backendS3, "delete", start, err) }()

	versions, err := s.versions(ctx, name)
	if err != nil {
		return err
	}
	if !slices.Contains(versions, version) {
		return fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
	}
	return s.deleteVersion(ctx, name, version)
}

// Prune keeps the newest keep versions of name. keep below 1 is treated
// as 1.
func (s *S3Store) Prune(ctx context.Context, name string, keep int) (err error) {
	start := time.Now()
	defer func() { observe(backendS3, "prune", start, err) }()

	if keep < 1 {
		keep = 1
	}
	versions, err := s.versions(ctx, name)
	if err != nil {
		return err
	}
	if len(versions) <= keep {
		return nil
	}
	for _, v := range versions[:len(versions)-keep] {
		if err := s.deleteVersion(ctx, name, v); err != nil {
			return fmt.Errorf("prune %s v%d: %w", name, v, err)
		}
	}
	return nil
}

func (s *S3Store) deleteVersion(ctx context.Context, name string, version int) error {
	if err := s.remove(ctx, s.metaKey(name, version)); err != nil {
		return err
	}
	return s.remove(ctx, s.artifactKey(name, version))
}

// PutFile uploads a local file under the store prefix and returns its
// s3:// URI. It is used for the exported top-K map and the eval report.
func (s *S3Store) PutFile(ctx context.Context, localPath string) (uri string, err error) {
	start := time.Now()
	defer func() { observe(backendS3, "put_file", start, err) }()

	data, err := os.ReadFile(localPath) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return "", fmt.Errorf("read %s: %w", localPath, err)
	}
	key := joinObjectKey(s.prefix, filepath.Base(localPath))
	contentType := "application/octet-stream"
	if strings.HasSuffix(localPath, ".json") {
		contentType = "application/json"
	}
	if err := s.put(ctx, key, contentType, data); err != nil {
		return "", err
	}
	return s.URI(key), nil
}

// Close is a no-op; the AWS client holds no resources to release.
func (s *S3Store) Close() error {
	return nil
}

// isNotFound matches the S3 not-found shapes, which differ between
// HeadBucket, GetObject and S3-compatible servers.
func isNotFound(err error) bool {
	var (
		notFound *types.NotFound
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
	)
	if errors.As(err, &notFound) || errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return true
	}
	return httpStatus(err) == http.StatusNotFound
}

func httpStatus(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

var _ Repository = (*S3Store)(nil)
