package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func hello(c *gin.Context) {
	c.String(http.StatusOK, "geoclass "+VERSION)
}

func ping(c *gin.Context) {
	c.String(http.StatusOK, "Pong")
}
