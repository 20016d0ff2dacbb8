package config

import (
	"os"
	"strconv"
)

// Exist - возвращает true, если переменная key задана
func Exist(key string) bool {
	_, exist := os.LookupEnv(key)
	return exist
}

func GetEnv(key string) string {
	val, _ := os.LookupEnv(key)
	return val
}

// GetIntEnv - возвращает числовое значение переменной, 0 при ошибке разбора
func GetIntEnv(key string) int {
	v, err := strconv.Atoi(GetEnv(key))
	if err != nil {
		return 0
	}
	return v
}

// GetBoolEnv - возвращает логическое значение переменной, false при ошибке разбора
func GetBoolEnv(key string) bool {
	v, err := strconv.ParseBool(GetEnv(key))
	if err != nil {
		return false
	}
	return v
}
