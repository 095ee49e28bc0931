// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package device

import (
	"fmt"

	"github.com/mkokutoyori/netsim/internal/journal"
	"github.com/mkokutoyori/netsim/internal/ospf"
	"github.com/mkokutoyori/netsim/internal/users"
)

const fixedShells = "/bin/sh\n/bin/bash\n/usr/bin/bash\n"

const fixedSudoers = `# /etc/sudoers
root	ALL=(ALL:ALL) ALL
%sudo	ALL=(ALL:ALL) ALL
`

// materializeBootTree lays out the directories and fixed-content files
// spec §6 "VFS-backed state files" names: /root 0700, /tmp 01777,
// /bin,/sbin,/lib,/lib64 symlinks into /usr/..., /etc/hostname,
// /etc/shells, /etc/sudoers, and empty /var/log/* ready for the journal
// to append to.
func (d *Device) materializeBootTree(umask uint32) error {
	dirs := []string{
		"/etc", "/root", "/tmp", "/var", "/var/log", "/home",
		"/usr", "/usr/bin", "/usr/sbin", "/usr/lib", "/usr/lib64",
	}
	for _, dir := range dirs {
		if err := d.vfs.Mkdirp(dir, "/", umask); err != nil {
			return err
		}
	}

	for link, target := range map[string]string{
		"/bin":   "/usr/bin",
		"/sbin":  "/usr/sbin",
		"/lib":   "/usr/lib",
		"/lib64": "/usr/lib64",
	} {
		if err := d.vfs.CreateSymlink(link, "/", target); err != nil {
			return err
		}
	}

	if err := d.vfs.Chmod("/root", "/", 0o700, false); err != nil {
		return err
	}
	if err := d.vfs.Chmod("/tmp", "/", 0o1777, false); err != nil {
		return err
	}

	if err := d.vfs.WriteFile("/etc/hostname", "/", []byte(d.cfg.Hostname+"\n"), false, umask); err != nil {
		return err
	}
	if err := d.vfs.WriteFile("/etc/shells", "/", []byte(fixedShells), false, umask); err != nil {
		return err
	}
	if err := d.vfs.WriteFile("/etc/sudoers", "/", []byte(fixedSudoers), false, umask); err != nil {
		return err
	}
	if err := d.vfs.Chmod("/etc/sudoers", "/", 0o440, false); err != nil {
		return err
	}

	if err := d.users.AddGroup("adm", nil); err != nil {
		return fmt.Errorf("boot: creating adm group: %w", err)
	}
	admGroup, _ := d.users.Group("adm")

	for _, name := range []string{"syslog", "auth.log", "kern.log", "boot.log"} {
		path := "/var/log/" + name
		if err := d.vfs.WriteFile(path, "/", nil, false, umask); err != nil {
			return err
		}
		if err := d.vfs.Chmod(path, "/", 0o640, false); err != nil {
			return err
		}
		if err := d.vfs.Chown(path, "/", 0, admGroup.Gid, false); err != nil {
			return err
		}
	}

	return nil
}

// seedAccounts creates every account/group cfg.Config.Users/Groups names
// (spec §8 example config-driven boot), beyond the root account the
// User/Group Manager already seeds itself.
func (d *Device) seedAccounts() error {
	for _, g := range d.cfg.Groups {
		gid := g.Gid
		var gidPtr *int
		if gid != 0 {
			gidPtr = &gid
		}
		if err := d.users.AddGroup(g.Name, gidPtr); err != nil {
			return err
		}
		for _, member := range g.Members {
			if err := d.users.Gpasswd(g.Name, member, ""); err != nil {
				return err
			}
		}
	}

	for _, u := range d.cfg.Users {
		var primaryGid *int
		if u.Gid != 0 {
			gid := u.Gid
			primaryGid = &gid
		}
		opts := users.AddUserOptions{
			Username:   u.Username,
			GECOS:      u.Gecos,
			Home:       u.Home,
			Shell:      u.Shell,
			PrimaryGid: primaryGid,
			CreateHome: true,
		}
		if opts.Home == "" {
			opts.Home = "/home/" + u.Username
		}
		if opts.Shell == "" {
			opts.Shell = "/bin/bash"
		}
		if err := d.users.AddUser(opts); err != nil {
			return err
		}
		if u.Password != "" {
			if err := d.users.SetPassword(u.Username, u.Password); err != nil {
				return err
			}
		}
		if u.Sudoer {
			if err := d.users.Gpasswd("sudo", u.Username, ""); err != nil {
				// A missing "sudo" group (not seeded by this config) isn't
				// fatal at boot; the account simply can't sudo yet.
				d.journal.Write(journal.FacilityKernel, journal.SeverityWarning, "sudoer %s: %v", u.Username, err)
			}
		}
	}
	return nil
}

// bootNetwork brings up the OSPF engine's areas and interfaces from
// cfg.Config.Network (spec §4.6, §8 example config).
func (d *Device) bootNetwork() error {
	for _, a := range d.cfg.Network.Areas {
		d.ospf.AddArea(a.ID, a.Stub)
	}
	if len(d.cfg.Network.Areas) == 0 && len(d.cfg.Network.Interfaces) > 0 {
		d.ospf.AddArea("0.0.0.0", false)
	}

	for _, ifaceCfg := range d.cfg.Network.Interfaces {
		area := ifaceCfg.Area
		if area == "" {
			area = "0.0.0.0"
		}
		netType := ospf.NetBroadcast
		switch ifaceCfg.NetworkType {
		case "point-to-point":
			netType = ospf.NetPointToPoint
		case "point-to-multipoint":
			netType = ospf.NetPointToMultipoint
		}

		cost := ifaceCfg.Cost
		if cost <= 0 {
			cost = 10
		}
		hello := ifaceCfg.HelloIntervalSecs
		if hello <= 0 {
			hello = 10
		}
		dead := ifaceCfg.DeadIntervalSecs
		if dead <= 0 {
			dead = 40
		}

		if err := d.ospf.AddInterface(ospf.Interface{
			Name:              ifaceCfg.Name,
			Addresses:         ifaceCfg.Addresses,
			Area:              area,
			NetworkType:       netType,
			Cost:              cost,
			Priority:          ifaceCfg.Priority,
			Passive:           ifaceCfg.Passive,
			IPv6:              ifaceCfg.IPv6,
			HelloIntervalSecs: hello,
			DeadIntervalSecs:  dead,
		}); err != nil {
			return err
		}
	}
	return nil
}
