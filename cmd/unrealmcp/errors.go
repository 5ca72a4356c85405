package main

import (
	apperrors "unreal-mcp-go/internal/errors"
	"unreal-mcp-go/internal/storage"
)

func notFound(err error) error {
	if storage.IsNotFound(err) {
		return apperrors.Wrap(apperrors.KindNotFound, "runs", "", err)
	}
	return err
}
