package storage

import (
	"context"
	"mime/multipart"
	"time"

	"recipe-share-api/internal/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type awsS3 struct {
	client *s3.Client
	cfg    Config
	now    func() time.Time
}

// NewAwsS3 builds a path-style S3 client against {URL}/storage/v1/s3.
func NewAwsS3(ctx context.Context, cfg Config) (Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.baseURL() + "/storage/v1/s3")
		o.UsePathStyle = true
	})

	return &awsS3{client: client, cfg: cfg, now: time.Now}, nil
}

func (s *awsS3) UploadRecipeImage(ctx context.Context, recipeID string, file *multipart.FileHeader) (string, error) {
	key := RecipeImageKey(recipeID, file.Filename, s.now())
	if err := s.put(ctx, s.cfg.RecipeBucket, key, file); err != nil {
		return "", err
	}
	return key, nil
}

func (s *awsS3) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	key := AvatarKey(userID, file.Filename, s.now())
	if err := s.put(ctx, s.cfg.AvatarBucket, key, file); err != nil {
		return "", err
	}
	return key, nil
}

func (s *awsS3) put(ctx context.Context, bucket, key string, file *multipart.FileHeader) error {
	if err := ValidateImage(file); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer src.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(ContentType(file.Filename)),
	})
	metrics.RecordStorage("put", err)
	return errors.Wrapf(err, "put object %s/%s", bucket, key)
}

func (s *awsS3) DeleteRecipeImage(ctx context.Context, pathOrURL string) error {
	return s.delete(ctx, s.cfg.RecipeBucket, pathOrURL)
}

func (s *awsS3) DeleteAvatar(ctx context.Context, pathOrURL string) error {
	return s.delete(ctx, s.cfg.AvatarBucket, pathOrURL)
}

func (s *awsS3) delete(ctx context.Context, bucket, pathOrURL string) error {
	key := s.cfg.ObjectPath(bucket, pathOrURL)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorage("delete", err)
	return errors.Wrapf(err, "delete object %s/%s", bucket, key)
}

func (s *awsS3) RecipeImageURL(path string) *string {
	return s.cfg.PublicURL(s.cfg.RecipeBucket, path)
}

func (s *awsS3) AvatarURL(path *string) *string {
	if path == nil {
		return nil
	}
	return s.cfg.PublicURL(s.cfg.AvatarBucket, *path)
}
