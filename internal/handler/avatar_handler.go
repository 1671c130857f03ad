package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timekids/internal/db"
	"golang.org/x/image/draw"
)

// アバターはこのサイズまで縮小して保存する
const avatarMaxEdge = 256

// UploadAvatar 上传并缩小头像，随后更新用户资料
func (a *API) UploadAvatar(c *gin.Context) {
	targetID, ok := a.resolveTargetUser(c, c.PostForm("user_id"))
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "画像ファイルが見つかりません")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "画像ファイルのみアップロードできます")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "画像の読み込みに失敗しました")
		return
	}
	defer src.Close()

	decoded, format, err := image.Decode(src)
	if err != nil {
		respondError(c, http.StatusBadRequest, "画像を解析できませんでした")
		return
	}

	resized := downscaleAvatar(decoded)

	if err := os.MkdirAll(a.uploadDir, 0755); err != nil {
		respondError(c, http.StatusInternalServerError, "アップロード先の作成に失敗しました")
		return
	}

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	filename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, filename)

	out, err := os.Create(filePath)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "画像の保存に失敗しました")
		return
	}
	defer out.Close()

	if format == "png" {
		err = png.Encode(out, resized)
	} else {
		err = jpeg.Encode(out, resized, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "画像の保存に失敗しました")
		return
	}

	avatarURL := a.uploadURL + "/" + filename
	if err := a.db.Model(&db.User{}).Where("id = ?", targetID).
		Update("avatar_url", avatarURL).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "プロフィールの更新に失敗しました")
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": avatarURL})
}

// downscaleAvatar 保持纵横比将图片缩小到上限边长以内；足够小时原样返回
func downscaleAvatar(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= avatarMaxEdge && height <= avatarMaxEdge {
		return src
	}

	if width >= height {
		height = height * avatarMaxEdge / width
		width = avatarMaxEdge
	} else {
		width = width * avatarMaxEdge / height
		height = avatarMaxEdge
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
