package log

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "action",
		},
	})
	return l
}

// SetOutput redirects every entry to w.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

// Writer is the current sink, so callers can restore it.
func Writer() io.Writer { return logger.Out }

func write(level logrus.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	f := logrus.Fields{}
	if len(fields) > 0 {
		f["fields"] = fields
	}
	if c != nil {
		f["ip"] = c.IP()
		f["method"] = c.Method()
		f["path"] = c.Path()
		if st := c.Response().StatusCode(); st != 0 {
			f["status"] = st
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			f["req_id"] = rid
		}
	}
	e := logger.WithFields(f)
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	e.Log(level, action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, c, action, nil, fields)
}
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, c, action, nil, withKind(fields, "audit"))
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.WarnLevel, c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logrus.ErrorLevel, c, action, err, fields)
}

func withKind(fields map[string]any, kind string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["kind"] = kind
	return out
}
