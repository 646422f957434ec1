package avatarsvc

// AvatarConfig holds configuration parameters for the avatar service.
type AvatarConfig struct {
	// Size is the edge length of generated avatars in pixels
	Size int `env:"SIZE" envDefault:"400"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" envDefault:"catmullrom"`

	// MaxSourceSize is the largest picture file in bytes Replace will decode.
	// Larger files are treated like undecodable ones. Default is 20MB.
	MaxSourceSize int64 `env:"MAX_SOURCE_SIZE" envDefault:"20971520"`

	// MaxSourcePixels caps width*height declared by a picture header.
	// Larger pictures are treated like undecodable ones. Non-positive values
	// use DefaultMaxSourcePixels.
	MaxSourcePixels int64 `env:"MAX_SOURCE_PIXELS" envDefault:"50000000"`
}

// DefaultMaxSourcePixels is the pixel cap used when none is configured.
const DefaultMaxSourcePixels = 50_000_000

func (cfg AvatarConfig) maxSourcePixels() int64 {
	if cfg.MaxSourcePixels <= 0 {
		return DefaultMaxSourcePixels
	}

	return cfg.MaxSourcePixels
}
