package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/cyfeng16/depth-estimator/internal/config"
)

type S3FileStorage struct {
	client *s3.Client
	cfg    *config.S3Config
}

func NewS3FileStorage(cfg *config.Config) (*S3FileStorage, error) {
	if cfg.S3 == nil {
		return nil, fmt.Errorf("s3 config is not set")
	}

	region := cfg.S3.Region
	if region == "" {
		region = "auto"
	}

	credentialsProvider := credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")
	awsConfig, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithRegion(region),
		awsConfig.WithCredentialsProvider(credentialsProvider),
	)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = &cfg.S3.EndpointUrl
	})

	return &S3FileStorage{
		client: s3Client,
		cfg:    cfg.S3,
	}, nil
}

func (u *S3FileStorage) Upload(file FileInfo) (string, error) {
	var key string
	if file.IsTemp {
		key = fmt.Sprintf("%s/%s%s", "temp", file.Name, file.Extension)
	} else {
		folder := strings.TrimSuffix(u.cfg.Folder, "/")
		key = fmt.Sprintf("%s/%s%s", folder, file.Name, file.Extension)
	}

	var (
		mtype   string
		content io.Reader
	)
	if file.Kind == FileKindBytes {
		mtype = mimetype.Detect(file.Content.([]byte)).String()
		content = bytes.NewReader(file.Content.([]byte))
	} else if file.Kind == FileKindStream {
		buff := bytes.NewBuffer(nil)
		content = io.TeeReader(file.Content.(io.Reader), buff)
		value, err := mimetype.DetectReader(buff)
		if err != nil {
			return "", err
		}

		mtype = value.String()
	} else {
		return "", ErrUnknownFileKind
	}

	// TODO: uploads are publicly readable; make the ACL configurable.
	input := s3.PutObjectInput{
		Key:         &key,
		ContentType: &mtype,
		Bucket:      &u.cfg.Bucket,
		Body:        content,
		ACL:         types.ObjectCannedACLPublicRead,
	}
	_, err := u.client.PutObject(context.TODO(), &input)
	if err != nil {
		return "", err
	}

	return u.publicURL(key)
}

// publicURL infers where an uploaded key is reachable. Providers whose URL
// scheme we cannot guess require a vanity URL in the config.
func (u *S3FileStorage) publicURL(key string) (string, error) {
	if u.cfg.VanityUrl != "" {
		vanityUrl := strings.TrimSuffix(u.cfg.VanityUrl, "/")
		return fmt.Sprintf("%s/%s", vanityUrl, key), nil
	}

	switch {
	case strings.Contains(u.cfg.EndpointUrl, "digitaloceanspaces.com"):
		return fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com/%s", u.cfg.Bucket, u.cfg.Region, key), nil

	case strings.Contains(u.cfg.EndpointUrl, "amazonaws.com"):
		endpoint := strings.TrimPrefix(u.cfg.EndpointUrl, "https://")
		endpoint = strings.TrimSuffix(endpoint, "/")
		return fmt.Sprintf("https://%s.%s/%s", u.cfg.Bucket, endpoint, key), nil

	default:
		return "", fmt.Errorf("cannot infer a public URL for endpoint %q; set DEPTH_S3_VANITY_URL", u.cfg.EndpointUrl)
	}
}

func (u *S3FileStorage) UploadMultiple(files []FileInfo) ([]string, error) {
	var uploadedFiles []string
	for _, file := range files {
		destination, err := u.Upload(file)
		if err != nil {
			return nil, err
		}

		uploadedFiles = append(uploadedFiles, destination)
	}

	return uploadedFiles, nil
}

func (u *S3FileStorage) GetFile(filename string) (*FileInfo, error) {
	params := &s3.GetObjectInput{
		Bucket: &u.cfg.Bucket,
		Key:    &filename,
	}

	object, err := u.client.GetObject(context.TODO(), params)
	if err != nil {
		return nil, err
	}
	defer object.Body.Close()

	content, err := io.ReadAll(object.Body)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Name:      filename,
		Extension: filepath.Ext(filename),
		Content:   content,
		Kind:      FileKindBytes,
		IsTemp:    false,
	}, nil
}

func (u *S3FileStorage) ResolveFile(filename string, subfolder string, isTemp bool) (string, error) {
	return "", fmt.Errorf("s3 storage cannot resolve local paths")
}
