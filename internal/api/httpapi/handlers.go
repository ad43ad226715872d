package httpapi

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/importer"
)

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	list, err := s.d.Projects.List(c.UserContext())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(list)
}

// createProject consumes multipart/form-data: one or more "files" parts
// plus optional "name" and "method" fields.
func (s *Server) createProject(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "multipart form required")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
	}

	files := make([]importer.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}
		files = append(files, importer.UploadedFile{Name: fh.Filename, Data: data})
	}

	p, err := s.d.Projects.Create(c.UserContext(), c.FormValue("name"), files, c.FormValue("method"))
	if err != nil {
		if p != nil {
			// The project exists but landed on the error status.
			return c.Status(fiber.StatusUnprocessableEntity).JSON(p)
		}
		return apiError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) getProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := s.d.Projects.Get(c.UserContext(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(p)
}

func (s *Server) deleteProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	op, err := s.d.Batch.Apply(c.UserContext(), domain.BatchDelete, []int64{id}, 0, "")
	if err != nil {
		return apiError(c, err)
	}
	if out := op.Outcomes[id]; !out.OK {
		return writeError(c, fiber.StatusConflict, "DELETE_FAILED", out.Error)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listProjectFiles(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	files, err := s.d.Projects.Files(c.UserContext(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(files)
}

func (s *Server) addTargetLang(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Lang string `json:"lang"`
	}
	if err := c.BodyParser(&body); err != nil || body.Lang == "" {
		return writeError(c, fiber.StatusBadRequest, "LANG_REQUIRED", "lang is required")
	}
	p, err := s.d.Projects.AddTargetLang(c.UserContext(), id, body.Lang)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(p)
}

func (s *Server) listChunks(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	chunks, err := s.d.Projects.Chunks(c.UserContext(), id, c.Query("lang"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(chunks)
}

func (s *Server) getProgress(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	snap, err := s.d.Orchestration.Progress(c.UserContext(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(snap)
}

func (s *Server) exportProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	lang := c.Query("lang")
	if lang == "" {
		return writeError(c, fiber.StatusBadRequest, "LANG_REQUIRED", "lang is required")
	}
	format := c.Query("format", "txt")
	data, name, err := s.d.Export.Export(c.UserContext(), id, lang, format)
	if err != nil {
		return apiError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	if format == "csv" {
		c.Type("csv")
	} else {
		c.Type("txt")
	}
	return c.Send(data)
}

type runRequest struct {
	ProviderID int64  `json:"provider_id"`
	Model      string `json:"model"`
}

func (s *Server) startProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body runRequest
	_ = c.BodyParser(&body)
	if err := s.d.Orchestration.Start(c.UserContext(), id, body.ProviderID, body.Model); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) pauseProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.d.Orchestration.Pause(c.UserContext(), id); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) cancelProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.d.Orchestration.Cancel(c.UserContext(), id); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) retryProject(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body runRequest
	_ = c.BodyParser(&body)
	if err := s.d.Orchestration.RetryFailed(c.UserContext(), id, body.ProviderID, body.Model); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) applyBatch(c *fiber.Ctx) error {
	var body struct {
		Action     string  `json:"action"`
		ProjectIDs []int64 `json:"project_ids"`
		ProviderID int64   `json:"provider_id"`
		Model      string  `json:"model"`
	}
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	action := domain.BatchAction(body.Action)
	if !action.Valid() {
		return writeError(c, fiber.StatusBadRequest, "UNKNOWN_ACTION", "unknown batch action")
	}
	if len(body.ProjectIDs) == 0 {
		return writeError(c, fiber.StatusBadRequest, "PROJECTS_REQUIRED", "project_ids is required")
	}
	op, err := s.d.Batch.Apply(c.UserContext(), action, body.ProjectIDs, body.ProviderID, body.Model)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(op)
}

func (s *Server) listProviders(c *fiber.Ctx) error {
	list, err := s.d.Providers.List(c.UserContext())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) createProvider(c *fiber.Ctx) error {
	var p domain.Provider
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	created, err := s.d.Providers.Create(c.UserContext(), p)
	if err != nil {
		return apiError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) updateProvider(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var p domain.Provider
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	p.ID = id
	updated, err := s.d.Providers.Update(c.UserContext(), p)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(updated)
}

func (s *Server) deleteProvider(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.d.Providers.Delete(c.UserContext(), id); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listProviderModels(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	models, err := s.d.Providers.ListModels(c.UserContext(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(models)
}

func (s *Server) previewProviderModels(c *fiber.Ctx) error {
	var p domain.Provider
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	models, err := s.d.Providers.ListModelsPreview(c.UserContext(), p)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(models)
}

func (s *Server) testProvider(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := s.d.Providers.Test(c.UserContext(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(res)
}

func (s *Server) activateProvider(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.d.Providers.SetActive(c.UserContext(), id); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) providerHealth(c *fiber.Ctx) error {
	checks, err := s.d.Providers.Health(c.UserContext())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(checks)
}

func templateProjectID(c *fiber.Ctx) *int64 {
	raw := c.Query("project_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func (s *Server) getTemplate(c *fiber.Ctx) error {
	t, err := s.d.Settings.Template(c.UserContext(), c.Params("type"), c.Params("role"), templateProjectID(c))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	}
	if t == nil {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no stored template; builtin in effect")
	}
	return c.JSON(t)
}

func (s *Server) setTemplate(c *fiber.Ctx) error {
	var body struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	t, err := s.d.Settings.SetTemplate(c.UserContext(), c.Params("type"), c.Params("role"), body.Body, templateProjectID(c))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	}
	return c.JSON(t)
}

func (s *Server) getSetting(c *fiber.Ctx) error {
	val, err := s.d.Settings.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(fiber.Map{"key": c.Params("key"), "value": val})
}

func (s *Server) setSetting(c *fiber.Ctx) error {
	var body struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	if err := s.d.Settings.Set(c.UserContext(), c.Params("key"), body.Value); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
