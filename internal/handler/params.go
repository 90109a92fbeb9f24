package handler

import (
	"errors"
	"strconv"
)

var errNotPositive = errors.New("id must be a positive integer")

func parsePositive(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, errNotPositive
	}
	return id, nil
}
