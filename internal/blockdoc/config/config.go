// Конфигурация инструментов blockdoc из переменных окружения.
//
// Поля Config связаны с переменными тегом env. Незаданные переменные
// оставляют значения по умолчанию, значения вне допустимого диапазона
// заменяются значениями по умолчанию.
package config

import (
	"log/slog"
	"reflect"
	"runtime"
	"strings"
)

type Config struct {
	// SchemaPath - YAML файл с дополнительными типами схемы.
	SchemaPath string `env:"BLOCKDOC_SCHEMA"`

	MarkdownExtensionsRaw string `env:"BLOCKDOC_MD_EXTENSIONS"`
	// MarkdownExtensions - nil, если переменная не задана.
	MarkdownExtensions []string

	Sanitize    bool `env:"BLOCKDOC_SANITIZE"`
	CompactHTML bool `env:"BLOCKDOC_COMPACT_HTML"`
	Workers     int  `env:"BLOCKDOC_WORKERS"`
	Trace       bool `env:"BLOCKDOC_TRACE"`
}

// ReadConfig загружает конфигурацию из переменных окружения.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	if Exist("BLOCKDOC_MD_EXTENSIONS") {
		config.MarkdownExtensions = SplitList(config.MarkdownExtensionsRaw)
	}

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	return config
}

// SplitList разбирает список через запятую, пустые элементы отбрасываются.
// Пустая строка дает пустой, но не nil список.
func SplitList(raw string) []string {
	res := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}

// Присваивает полям структуры значения переменных, имя переменной лежит в теге поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		value := GetEnv(fEnvTag)
		slog.Debug("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", value),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(value)
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}
