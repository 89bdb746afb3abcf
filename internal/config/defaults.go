package config

const (
	defaultMediaDir           = "/media"
	defaultDataDir            = "~/.local/share/reelscan/data"
	defaultTempDir            = "~/.local/share/reelscan/temp"
	defaultLogDir             = "~/.local/share/reelscan/logs"
	defaultAPIBind            = "127.0.0.1:7823"
	defaultPreferredLanguage  = "en"
	defaultProbeTimeout       = 15
	defaultDoviTimeout        = 30
	defaultSweepInterval      = 900
	defaultSettleDelay        = 5
	defaultAudioEstimateRatio = 0.1
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBImageURL       = "https://image.tmdb.org/t/p/original"
	defaultTMDBLanguage       = "en"
	defaultFanartBaseURL      = "https://webservice.fanart.tv/v3"
	defaultPosterSource       = "tmdb"
	defaultPosterCacheDir     = "~/.local/share/reelscan/posters"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultExtensions() []string {
	return []string{".mkv", ".mp4", ".m4v", ".ts", ".hevc"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir: defaultMediaDir,
			DataDir:  defaultDataDir,
			TempDir:  defaultTempDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Scan: Scan{
			PreferredLanguage:  defaultPreferredLanguage,
			Extensions:         defaultExtensions(),
			ProbeTimeout:       defaultProbeTimeout,
			DoviTimeout:        defaultDoviTimeout,
			SweepInterval:      defaultSweepInterval,
			SettleDelay:        defaultSettleDelay,
			AudioEstimateRatio: defaultAudioEstimateRatio,
		},
		Tools: Tools{
			FFmpeg:    "ffmpeg",
			FFprobe:   "ffprobe",
			MediaInfo: "mediainfo",
			DoviTool:  "dovi_tool",
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			ImageURL: defaultTMDBImageURL,
			Language: defaultTMDBLanguage,
		},
		Fanart: Fanart{
			BaseURL: defaultFanartBaseURL,
		},
		Posters: Posters{
			Source:   defaultPosterSource,
			CacheDir: defaultPosterCacheDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
