// Package awstranscribe implements transcription with Amazon Transcribe
// batch jobs. Audio is staged in an S3 bucket, a job is started and
// polled, and the transcript JSON is read back from the same bucket.
package awstranscribe

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/provider"
	"github.com/kbukum/audioscribe/transcription"
)

const (
	// ProviderName is the registered name for the Amazon Transcribe backend.
	ProviderName = "awstranscribe"

	defaultPrefix       = "audioscribe/"
	defaultPollInterval = 10 * time.Second
	defaultJobTimeout   = 30 * time.Minute
	probeTimeout        = 5 * time.Second
)

// Config holds configuration for the Amazon Transcribe backend.
type Config struct {
	Bucket string `yaml:"bucket" mapstructure:"bucket" validate:"required"`
	// Prefix is prepended to staged media and job output keys.
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// JobTimeout bounds one job from upload to result.
	JobTimeout time.Duration `yaml:"job_timeout" mapstructure:"job_timeout"`
	// KeepObjects leaves the staged audio and the job JSON in the bucket.
	KeepObjects bool `yaml:"keep_objects" mapstructure:"keep_objects"`
	// LanguageCodes overrides the short-code to locale mapping, e.g. fr: fr-CA.
	LanguageCodes map[string]string `yaml:"language_codes" mapstructure:"language_codes"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
}

// jobAPI is the subset of the Transcribe client used here.
type jobAPI interface {
	StartTranscriptionJob(ctx context.Context, in *transcribe.StartTranscriptionJobInput, opts ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, in *transcribe.GetTranscriptionJobInput, opts ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Loader connects to AWS and checks the staging bucket.
type Loader struct {
	cfg     Config
	log     *logger.Logger
	connect func(ctx context.Context) (jobAPI, objectAPI, error)
}

// NewLoader creates an Amazon Transcribe loader.
func NewLoader(cfg Config, log *logger.Logger) *Loader {
	cfg.ApplyDefaults()
	l := &Loader{cfg: cfg, log: logger.OrGet(log, ProviderName)}
	l.connect = l.awsClients
	return l
}

// Factory returns a provider.Factory building Loaders from a config map.
func Factory(log *logger.Logger) provider.Factory[transcription.Loader] {
	return func(cfg map[string]any) (transcription.Loader, error) {
		var ac Config
		if err := provider.DecodeConfig(cfg, &ac); err != nil {
			return nil, err
		}
		return NewLoader(ac, log), nil
	}
}

func (l *Loader) awsClients(ctx context.Context) (jobAPI, objectAPI, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if l.cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(l.cfg.Region))
	}
	if l.cfg.AccessKey != "" && l.cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(l.cfg.AccessKey, l.cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	jobs := transcribe.NewFromConfig(awsCfg, func(o *transcribe.Options) {
		if l.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(l.cfg.Endpoint)
		}
	})
	objects := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if l.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(l.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return jobs, objects, nil
}

func (l *Loader) Name() string { return ProviderName }

// IsAvailable checks that the staging bucket is reachable.
func (l *Loader) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, objects, err := l.connect(ctx)
	if err != nil {
		return false
	}
	_, err = objects.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(l.cfg.Bucket)})
	return err == nil
}

// Load connects and checks the staging bucket. Amazon Transcribe picks its
// own model, so the tier is only validated.
func (l *Loader) Load(ctx context.Context, tier string) (transcription.Provider, error) {
	if err := transcription.CheckTier(tier); err != nil {
		return nil, err
	}
	jobs, objects, err := l.connect(ctx)
	if err != nil {
		return nil, errors.ModelLoadFailed(ProviderName, tier, err)
	}
	if _, err := objects.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(l.cfg.Bucket)}); err != nil {
		return nil, errors.ModelLoadFailed(ProviderName, tier, fmt.Errorf("bucket %s: %w", l.cfg.Bucket, err))
	}
	l.log.Info("amazon transcribe ready", logger.Fields(
		"bucket", l.cfg.Bucket,
		"region", l.cfg.Region,
		logger.FieldTier, tier,
	))
	return &Provider{cfg: l.cfg, jobs: jobs, objects: objects, log: l.log}, nil
}

// Provider runs one Transcribe job per file.
type Provider struct {
	cfg     Config
	jobs    jobAPI
	objects objectAPI
	log     *logger.Logger
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) IsAvailable(_ context.Context) bool { return true }

// Transcribe stages the audio, runs a job and returns its transcript.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	lang, err := languageCode(req.Language, p.cfg.LanguageCodes)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, errors.AudioNotFound(req.AudioPath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	defer cancel()

	ext := strings.ToLower(filepath.Ext(req.AudioPath))
	job := "audioscribe-" + uuid.NewString()
	mediaKey := p.cfg.Prefix + job + ext
	outputKey := p.cfg.Prefix + job + ".json"

	if _, err := p.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(mediaKey),
		Body:   f,
	}); err != nil {
		return nil, classify(ctx, err)
	}
	defer p.cleanup(ctx, mediaKey)

	if _, err := p.jobs.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(job),
		LanguageCode:         lang,
		MediaFormat:          mediaFormat(ext),
		Media:                &types.Media{MediaFileUri: aws.String("s3://" + p.cfg.Bucket + "/" + mediaKey)},
		OutputBucketName:     aws.String(p.cfg.Bucket),
		OutputKey:            aws.String(outputKey),
	}); err != nil {
		return nil, classify(ctx, err)
	}
	defer p.cleanup(ctx, outputKey)

	p.log.Debug("transcription job started", logger.Fields("job", job, logger.FieldFile, req.AudioPath))
	if err := p.wait(ctx, job); err != nil {
		return nil, err
	}

	out, err := p.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(outputKey),
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer out.Body.Close()

	res, err := decodeResult(out.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(ProviderName, err)
	}
	return &transcription.TranscriptionResponse{
		Text:     res.text(),
		Duration: res.duration(),
		Language: req.Language,
	}, nil
}

// wait polls the job until it completes, fails or ctx ends.
func (p *Provider) wait(ctx context.Context, job string) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for {
		out, err := p.jobs.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
			TranscriptionJobName: aws.String(job),
		})
		if err != nil {
			return classify(ctx, err)
		}
		switch out.TranscriptionJob.TranscriptionJobStatus {
		case types.TranscriptionJobStatusCompleted:
			return nil
		case types.TranscriptionJobStatusFailed:
			reason := aws.ToString(out.TranscriptionJob.FailureReason)
			appErr := errors.ExternalServiceError(ProviderName, fmt.Errorf("job %s failed: %s", job, reason))
			appErr.Retryable = false
			return appErr.WithDetail("job", job)
		}

		select {
		case <-ctx.Done():
			return classify(ctx, ctx.Err())
		case <-ticker.C:
		}
	}
}

// cleanup runs after the job context may already be done.
func (p *Provider) cleanup(ctx context.Context, key string) {
	if p.cfg.KeepObjects {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), probeTimeout)
	defer cancel()
	if _, err := p.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		p.log.Warn("could not delete staged object", logger.MergeWithError(logger.Fields("key", key), err))
	}
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if stderrors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return errors.Timeout(ProviderName).WithCause(err)
	}
	appErr := errors.ExternalServiceError(ProviderName, err)
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		appErr.WithDetail("aws_code", apiErr.ErrorCode())
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "LimitExceededException", "InternalFailureException", "SlowDown":
		default:
			appErr.Retryable = false
		}
	}
	return appErr
}

var (
	_ transcription.Loader   = (*Loader)(nil)
	_ transcription.Provider = (*Provider)(nil)
)
