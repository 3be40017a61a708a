package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Res 统一的接口返回结构
type Res struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

//MsgList 状态码对应的消息
var MsgList = map[int]string{
	200:  "成功",
	4000: "请求参数错误",
	4041: "找不到上传文件",
	4044: "找不到要素类",
	4045: "找不到字段",
	4046: "找不到指定资源",
	5001: "数据库错误",
	5003: "IO 读写错误",
	5004: "符号化失败",
	5005: "制图失败",
}

// NewRes 新建返回结构
func NewRes() *Res {
	return &Res{
		Code: http.StatusOK,
		Msg:  MsgList[200],
	}
}

// Done 成功返回消息
func (res *Res) Done(c *gin.Context, msg string) {
	res.Code = http.StatusOK
	res.Msg = MsgList[200]
	if msg != "" {
		res.Msg = msg
	}
	c.JSON(http.StatusOK, res)
}

// DoneData 成功返回数据
func (res *Res) DoneData(c *gin.Context, data interface{}) {
	res.Code = http.StatusOK
	res.Msg = MsgList[200]
	res.Data = data
	c.JSON(http.StatusOK, res)
}

// Fail 按状态码返回
func (res *Res) Fail(c *gin.Context, code int) {
	res.Code = code
	res.Msg = MsgList[code]
	c.JSON(http.StatusOK, res)
}

// FailMsg 失败返回消息
func (res *Res) FailMsg(c *gin.Context, msg string) {
	res.Code = 4000
	res.Msg = msg
	c.JSON(http.StatusOK, res)
}

// FailErr 失败返回错误
func (res *Res) FailErr(c *gin.Context, err error) {
	res.Code = 4000
	if err != nil {
		res.Msg = err.Error()
	}
	c.JSON(http.StatusOK, res)
}
