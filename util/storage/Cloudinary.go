package storage

import (
	"context"
	"errors"
	"io"

	"github.com/bwise1/complaint_portal/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("image storage is not configured")

// Image is a stored upload: PublicID is the reference kept on the
// complaint, URL is what clients render.
type Image struct {
	PublicID string `json:"image_id"`
	URL      string `json:"image_url"`
}

type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, folder string) (Image, error)
	DeleteImage(ctx context.Context, publicID string) error
}

type Cloudinary struct {
	CLD *cloudinary.Cloudinary
}

func NewCloudinary(cfg *config.Config) (*Cloudinary, error) {
	if !cfg.CloudinaryEnabled() {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, err
	}

	return &Cloudinary{CLD: cld}, nil
}

func (c *Cloudinary) UploadImage(ctx context.Context, file io.Reader, folder string) (Image, error) {
	resp, err := c.CLD.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return Image{}, err
	}
	if resp.Error.Message != "" {
		return Image{}, errors.New(resp.Error.Message)
	}
	return Image{PublicID: resp.PublicID, URL: resp.SecureURL}, nil
}

func (c *Cloudinary) DeleteImage(ctx context.Context, publicID string) error {
	resp, err := c.CLD.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if resp.Error.Message != "" {
		return errors.New(resp.Error.Message)
	}
	return nil
}
