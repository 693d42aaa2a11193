package models

type Config struct {
	Debug bool `yaml:"debug" envconfig:"KAVIAR_DEBUG"`

	Ingest struct {
		DataFolder          string `yaml:"dataFolder" envconfig:"KAVIAR_DATA_FOLDER"`
		KnownExceptionsPath string `yaml:"knownExceptionsPath" envconfig:"KAVIAR_KNOWN_EXCEPTIONS_PATH"`
		SortCommand         string `yaml:"sortCommand" envconfig:"KAVIAR_SORT_COMMAND" default:"sort"`
		SortBufferSize      string `yaml:"sortBufferSize" envconfig:"KAVIAR_SORT_BUFFER_SIZE"`
		ShowProgress        bool   `yaml:"showProgress" envconfig:"KAVIAR_SHOW_PROGRESS"`
	} `yaml:"ingest"`
	Output struct {
		Path string `yaml:"path" envconfig:"KAVIAR_OUTPUT_PATH"`
	} `yaml:"output"`
	Elasticsearch struct {
		Url        string `yaml:"url" envconfig:"KAVIAR_ES_URL" default:"http://localhost:9200"`
		Username   string `yaml:"username" envconfig:"KAVIAR_ES_USERNAME"`
		Password   string `yaml:"password" envconfig:"KAVIAR_ES_PASSWORD"`
		Index      string `yaml:"index" envconfig:"KAVIAR_ES_INDEX" default:"kaviar"`
		NumWorkers int    `yaml:"numWorkers" envconfig:"KAVIAR_ES_BULK_WORKERS" default:"2"`
		FlushBytes int    `yaml:"flushBytes" envconfig:"KAVIAR_ES_BULK_FLUSH_BYTES" default:"5000000"`
	} `yaml:"elasticsearch"`
	Log struct {
		Level  string `yaml:"level" envconfig:"KAVIAR_LOG_LEVEL" default:"info"`
		Format string `yaml:"format" envconfig:"KAVIAR_LOG_FORMAT" default:"console"`
	} `yaml:"log"`
	Metrics struct {
		TextfilePath string `yaml:"textfilePath" envconfig:"KAVIAR_METRICS_TEXTFILE"`
	} `yaml:"metrics"`
}
