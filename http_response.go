package numsvc

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	fiber "github.com/gofiber/fiber/v3"
)

// respond encodes v with the serializer chosen from the Accept header. When withETag is set
// the body hash becomes a strong ETag and a matching If-None-Match short-circuits to 304.
func (s *HTTPServer) respond(fiberCtx fiber.Ctx, v any, withETag bool) error {
	codec := s.serializers.Negotiate(fiberCtx.Get(fiber.HeaderAccept))

	body, err := codec.Marshal(v)
	if err != nil {
		return err
	}

	fiberCtx.Set(fiber.HeaderVary, fiber.HeaderAccept)

	if withETag {
		tag := etag(body)
		fiberCtx.Set(fiber.HeaderETag, tag)

		if etagMatches(fiberCtx.Get(fiber.HeaderIfNoneMatch), tag) {
			return fiberCtx.SendStatus(fiber.StatusNotModified)
		}
	}

	fiberCtx.Set(fiber.HeaderContentType, codec.ContentType())

	return fiberCtx.Send(body)
}

// etag returns the quoted xxhash64 of body.
func etag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// etagMatches reports whether an If-None-Match header lists tag or "*". Weak prefixes are ignored.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}

	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}

	return false
}
