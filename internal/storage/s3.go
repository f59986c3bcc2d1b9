package storage

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/xxxsen/romdoctor/internal/config"
	"github.com/xxxsen/romdoctor/internal/constant"
)

const defaultRegion = "us-east-1"

type s3Client struct {
	client *s3.Client
	bucket string
}

// NewS3Client builds a backup mirror backed by AWS S3 (or a compatible store).
func NewS3Client(ctx context.Context, cfg appconfig.S3Config) (Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 mirror needs both host and bucket")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Host)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return &s3Client{client: client, bucket: cfg.Bucket}, nil
}

func (c *s3Client) UploadFile(ctx context.Context, key, filePath string, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file for upload %s: %w", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat file for upload %s: %w", filePath, err)
	}
	if contentType == "" {
		contentType = contentTypeOf(filePath)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

var backupSuffixRe = regexp.MustCompile(regexp.QuoteMeta(constant.BackupSuffix) + `\d+$`)

// contentTypeOf guesses from the extension, looking through a .bak-<unix>
// suffix to the file it copies.
func contentTypeOf(filePath string) string {
	name := backupSuffixRe.ReplaceAllString(filePath, "")
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func normalizeEndpoint(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if strings.Contains(host, "://") {
		return host
	}
	u := url.URL{
		Scheme: "https",
		Host:   host,
	}
	return u.String()
}
