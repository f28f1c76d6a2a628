package adapter

import (
	"context"
	"time"

	"github.com/tailbits/halbridge/dto"
	"github.com/tailbits/halbridge/hal"
	"github.com/tidwall/gjson"
)

// Resource _type values of the remote API.
const (
	KindRoot          = "Root"
	KindConfiguration = "Configuration"
	KindUser          = "User"
	KindProject       = "Project"
	KindWorkPackage   = "WorkPackage"
	KindTimeEntry     = "TimeEntry"
	KindActivity      = "TimeEntriesActivity"
)

var User = Entity[dto.User]{
	Kind: KindUser,
	Mapping: Mapping[dto.User]{
		Int("id", func(d *dto.User, v int) { d.ID = v }).Required(),
		String("name", func(d *dto.User, v string) { d.DisplayName = v }).Required(),
		String("login", func(d *dto.User, v string) { d.Login = v }),
		String("firstName", func(d *dto.User, v string) { d.FirstName = v }),
		String("lastName", func(d *dto.User, v string) { d.LastName = v }),
		String("email", func(d *dto.User, v string) { d.Email = v }),
		String("avatar", func(d *dto.User, v string) { d.Avatar = v }),
		Bool("admin", func(d *dto.User, v bool) { d.Admin = v }),
		String("status", func(d *dto.User, v string) { d.Status = v }),
		String("language", func(d *dto.User, v string) { d.Language = v }),
		DateTime("createdAt", func(d *dto.User, v time.Time) { d.CreatedAt = v }),
		DateTime("updatedAt", func(d *dto.User, v time.Time) { d.UpdatedAt = v }),
	},
}

var Project = Entity[dto.Project]{
	Kind: KindProject,
	Mapping: Mapping[dto.Project]{
		Int("id", func(d *dto.Project, v int) { d.ID = v }).Required(),
		String("identifier", func(d *dto.Project, v string) { d.Identifier = v }).Required(),
		String("name", func(d *dto.Project, v string) { d.DisplayName = v }).Required(),
		Bool("active", func(d *dto.Project, v bool) { d.Active = v }),
		Bool("public", func(d *dto.Project, v bool) { d.Public = v }),
		Formattable("description", func(d *dto.Project, v string) { d.Description = v }),
		LinkID("status", func(d *dto.Project, v string) { d.Status = v }),
		Link("parent", func(d *dto.Project, v dto.Link) { d.Parent = &v }),
		DateTime("createdAt", func(d *dto.Project, v time.Time) { d.CreatedAt = v }),
		DateTime("updatedAt", func(d *dto.Project, v time.Time) { d.UpdatedAt = v }),
	},
}

var WorkPackage = Entity[dto.WorkPackage]{
	Kind: KindWorkPackage,
	Mapping: Mapping[dto.WorkPackage]{
		Int("id", func(d *dto.WorkPackage, v int) { d.ID = v }).Required(),
		String("subject", func(d *dto.WorkPackage, v string) { d.Subject = v }).Required(),
		Formattable("description", func(d *dto.WorkPackage, v string) { d.Description = v }),
		Date("startDate", func(d *dto.WorkPackage, v dto.Date) { d.StartDate = v }),
		Date("dueDate", func(d *dto.WorkPackage, v dto.Date) { d.DueDate = v }),
		Duration("estimatedTime", func(d *dto.WorkPackage, v time.Duration) { d.EstimatedHours = hours(v) }),
		Duration("spentTime", func(d *dto.WorkPackage, v time.Duration) { d.SpentHours = hours(v) }),
		Int("percentageDone", func(d *dto.WorkPackage, v int) { d.PercentageDone = v }),
		Int("lockVersion", func(d *dto.WorkPackage, v int) { d.LockVersion = v }),
		Link("project", func(d *dto.WorkPackage, v dto.Link) { d.Project = v }).Required(),
		Link("type", func(d *dto.WorkPackage, v dto.Link) { d.Type = &v }),
		Link("status", func(d *dto.WorkPackage, v dto.Link) { d.Status = &v }),
		Link("assignee", func(d *dto.WorkPackage, v dto.Link) { d.Assignee = &v }),
		DateTime("createdAt", func(d *dto.WorkPackage, v time.Time) { d.CreatedAt = v }),
		DateTime("updatedAt", func(d *dto.WorkPackage, v time.Time) { d.UpdatedAt = v }),
	},
}

var Activity = Entity[dto.Activity]{
	Kind: KindActivity,
	Mapping: Mapping[dto.Activity]{
		Int("id", func(d *dto.Activity, v int) { d.ID = v }).Required(),
		String("name", func(d *dto.Activity, v string) { d.DisplayName = v }).Required(),
		Int("position", func(d *dto.Activity, v int) { d.Position = v }),
		Bool("default", func(d *dto.Activity, v bool) { d.Default = v }),
	},
}

// TimeEntry resolves the activity, which the server usually embeds; the other
// links are kept as references.
var TimeEntry = Entity[dto.TimeEntry]{
	Kind: KindTimeEntry,
	Mapping: Mapping[dto.TimeEntry]{
		Int("id", func(d *dto.TimeEntry, v int) { d.ID = v }).Required(),
		Formattable("comment", func(d *dto.TimeEntry, v string) { d.Comment = v }),
		Date("spentOn", func(d *dto.TimeEntry, v dto.Date) { d.SpentOn = v }).Required(),
		Duration("hours", func(d *dto.TimeEntry, v time.Duration) { d.Hours = v.Hours() }).Required(),
		Bool("ongoing", func(d *dto.TimeEntry, v bool) { d.Ongoing = v }),
		Link("project", func(d *dto.TimeEntry, v dto.Link) { d.Project = v }).Required(),
		Link("workPackage", func(d *dto.TimeEntry, v dto.Link) { d.WorkPackage = &v }),
		Link("user", func(d *dto.TimeEntry, v dto.Link) { d.User = v }).Required(),
		Embed[dto.TimeEntry, dto.Activity]("activity", Activity, func(d *dto.TimeEntry, v *dto.Activity) { d.Activity = v }),
		DateTime("createdAt", func(d *dto.TimeEntry, v time.Time) { d.CreatedAt = v }),
		DateTime("updatedAt", func(d *dto.TimeEntry, v time.Time) { d.UpdatedAt = v }),
	},
}

var (
	root = Entity[dto.SystemInfo]{
		Kind: KindRoot,
		Mapping: Mapping[dto.SystemInfo]{
			String("instanceName", func(d *dto.SystemInfo, v string) { d.InstanceName = v }).Required(),
			String("coreVersion", func(d *dto.SystemInfo, v string) { d.CoreVersion = v }),
			Link("user", func(d *dto.SystemInfo, v dto.Link) { d.User = &v }),
		},
	}
	configuration = Entity[dto.SystemInfo]{
		Kind: KindConfiguration,
		Mapping: Mapping[dto.SystemInfo]{
			String("hostName", func(d *dto.SystemInfo, v string) { d.HostName = v }),
			String("durationFormat", func(d *dto.SystemInfo, v string) { d.DurationFormat = v }),
			property("perPageOptions", ints, func(d *dto.SystemInfo, v []int) { d.PerPageOptions = v }),
			property("activeFeatureFlags", strs, func(d *dto.SystemInfo, v []string) { d.ActiveFeatureFlags = v }),
		},
	}
)

// SystemInfo combines the API root and, when reachable, the configuration
// resource linked from it.
func SystemInfo(ctx context.Context, apiRoot *hal.Resource) (*dto.SystemInfo, error) {
	info, err := root.ResourceToDTO(ctx, apiRoot)
	if err != nil {
		return nil, err
	}

	cfg, err := apiRoot.Follow(ctx, "configuration")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return info, nil
	}
	if err := configuration.Into(ctx, cfg, info); err != nil {
		return nil, err
	}

	return info, nil
}

var (
	ProjectList = Collection[dto.Project, *dto.ProjectList]{
		Element:       Project,
		CreateDTOList: func() *dto.ProjectList { return &dto.ProjectList{Elements: []dto.Project{}} },
	}
	WorkPackageList = Collection[dto.WorkPackage, *dto.WorkPackageList]{
		Element:       WorkPackage,
		CreateDTOList: func() *dto.WorkPackageList { return &dto.WorkPackageList{Elements: []dto.WorkPackage{}} },
	}
	TimeEntryList = Collection[dto.TimeEntry, *dto.TimeEntryList]{
		Element:       TimeEntry,
		CreateDTOList: func() *dto.TimeEntryList { return &dto.TimeEntryList{Elements: []dto.TimeEntry{}} },
	}
)

func ints(v gjson.Result) ([]int, error) {
	if !v.IsArray() {
		return nil, typeError("array", v)
	}
	var out []int
	for _, item := range v.Array() {
		if item.Type != gjson.Number {
			return nil, typeError("integer", item)
		}
		out = append(out, int(item.Int()))
	}
	return out, nil
}

func strs(v gjson.Result) ([]string, error) {
	if !v.IsArray() {
		return nil, typeError("array", v)
	}
	var out []string
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out, nil
}

func hours(d time.Duration) *float64 {
	h := d.Hours()
	return &h
}
